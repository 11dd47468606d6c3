// Package sqlstore implements store.Store on top of GORM.
package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db"
)

// Store is either the root store or a transaction-scoped view of it.
type Store struct {
	client *db.Client
	conn   *gorm.DB
	inTx   bool
}

var _ store.Store = (*Store)(nil)

func New(client *db.Client) *Store {
	return &Store{client: client, conn: client.DB()}
}

func (s *Store) Members() store.MemberRepository { return memberRepo{base{s.conn}} }
func (s *Store) Plans() store.PlanRepository { return planRepo{base{s.conn}} }
func (s *Store) Payments() store.PaymentRepository { return paymentRepo{base{s.conn}} }
func (s *Store) Activities() store.ActivityRepository { return activityRepo{base{s.conn}} }
func (s *Store) StaffUsers() store.StaffUserRepository { return staffUserRepo{base{s.conn}} }

func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(&Store{client: s.client, conn: tx, inTx: true})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
