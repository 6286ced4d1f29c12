package booking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
)

var errSerialization = errors.New("could not serialize access due to read/write dependencies among transactions")

func isFakeSerialization(err error) bool {
	return errors.Is(err, errSerialization)
}

// memStore is an in-memory store with serializable semantics for the
// access pattern the coordinator uses: a transaction that read a person's
// appointments fails at commit if another transaction changed them since.
type memStore struct {
	mu       sync.Mutex
	rows     []model.Appointment
	nextID   int64
	versions map[int64]int

	// readBarrier, when set, holds every reader until all have read.
	readBarrier *sync.WaitGroup

	beginErr  error
	insertErr error
	commitErr error
	listErr   error

	rollbacks int
	commits   int
}

func newMemStore(rows ...model.Appointment) *memStore {
	s := &memStore{versions: make(map[int64]int)}
	for _, r := range rows {
		s.nextID++
		r.ID = s.nextID
		s.rows = append(s.rows, r)
	}
	return s
}

func (s *memStore) BeginSerializable(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &memTx{store: s, readVersions: make(map[int64]int)}, nil
}

func (s *memStore) ListAppointments(ctx context.Context, personID int64) ([]model.Appointment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forPersonLocked(personID), nil
}

func (s *memStore) forPersonLocked(personID int64) []model.Appointment {
	var out []model.Appointment
	for _, r := range s.rows {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type memTx struct {
	store        *memStore
	readVersions map[int64]int
	pending      []*model.Appointment
	done         bool
}

func (t *memTx) AppointmentsForPerson(ctx context.Context, personID int64) ([]model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.store.mu.Lock()
	t.readVersions[personID] = t.store.versions[personID]
	rows := t.store.forPersonLocked(personID)
	t.store.mu.Unlock()

	if b := t.store.readBarrier; b != nil {
		b.Done()
		b.Wait()
	}
	return rows, nil
}

func (t *memTx) Insert(ctx context.Context, a *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	t.pending = append(t.pending, a)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t.done = true
	if s.commitErr != nil {
		return s.commitErr
	}
	for personID, v := range t.readVersions {
		if s.versions[personID] != v {
			return errSerialization
		}
	}
	for _, a := range t.pending {
		s.nextID++
		a.ID = s.nextID
		s.rows = append(s.rows, *a)
		s.versions[a.PersonID]++
	}
	s.commits++
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbacks++
	t.pending = nil
	t.done = true
	return nil
}
