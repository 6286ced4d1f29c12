package service

import (
	"context"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/booking"
	"go.uber.org/zap"
)

type attemptIDKey struct{}

func withAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptIDKey{}, id)
}

// AttemptID returns the booking attempt id carried by ctx, if any.
func AttemptID(ctx context.Context) string {
	id, _ := ctx.Value(attemptIDKey{}).(string)
	return id
}

// PhaseLogger returns a booking.Observer that logs every phase transition
// at debug level.
func PhaseLogger(logger *zap.Logger) booking.Observer {
	return func(ctx context.Context, p booking.Phase) {
		if ce := logger.Check(zap.DebugLevel, "booking phase"); ce != nil {
			ce.Write(
				zap.String("attempt_id", AttemptID(ctx)),
				zap.Stringer("phase", p),
				zap.Bool("terminal", p.Terminal()),
			)
		}
	}
}
