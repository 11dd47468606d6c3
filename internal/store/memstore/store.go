// Package memstore is a process-local store.Store used for demos, local
// development without a database, and service tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type dataset struct {
	members    []models.Member
	plans      []models.MembershipPlan
	payments   []models.Payment
	activities []models.Activity
	staff      []models.StaffUser
}

func (d *dataset) clone() *dataset {
	return &dataset{
		members:    slices.Clone(d.members),
		plans:      slices.Clone(d.plans),
		payments:   slices.Clone(d.payments),
		activities: slices.Clone(d.activities),
		staff:      slices.Clone(d.staff),
	}
}

type shared struct {
	mu sync.Mutex
	// txMu serialises writers of the committed dataset. It is nil on a
	// transaction's private copy, whose owner already holds it.
	txMu *sync.Mutex
	data *dataset
	now  func() time.Time
}

// lockWrite returns the matching unlock.
func (s *shared) lockWrite() func() {
	if s.txMu != nil {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if s.txMu != nil {
			s.txMu.Unlock()
		}
	}
}

// Store is safe for concurrent use. A transaction works on a private copy of
// the dataset that replaces the committed one only when fn succeeds; other
// writers wait for it to finish.
type Store struct {
	s    *shared
	inTx bool
}

var _ store.Store = (*Store)(nil)

// Option customises a Store.
type Option func(*shared)

// WithClock overrides the timestamp source for created/updated fields.
func WithClock(now func() time.Time) Option {
	return func(s *shared) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &shared{txMu: &sync.Mutex{}, data: &dataset{}, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return &Store{s: s}
}

func (st *Store) Members() store.MemberRepository { return memberRepo{st.s} }
func (st *Store) Plans() store.PlanRepository { return planRepo{st.s} }
func (st *Store) Payments() store.PaymentRepository { return paymentRepo{st.s} }
func (st *Store) Activities() store.ActivityRepository { return activityRepo{st.s} }
func (st *Store) StaffUsers() store.StaffUserRepository { return staffUserRepo{st.s} }

func (st *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if st.inTx {
		return fn(st)
	}

	root := st.s
	root.txMu.Lock()
	defer root.txMu.Unlock()

	root.mu.Lock()
	work := &shared{data: root.data.clone(), now: root.now}
	root.mu.Unlock()

	if err := fn(&Store{s: work, inTx: true}); err != nil {
		return err
	}

	root.mu.Lock()
	root.data = work.data
	root.mu.Unlock()
	return nil
}

func (st *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *shared) stamp() time.Time {
	return s.now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
