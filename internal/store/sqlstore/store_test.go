package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(db.FromGorm(conn))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemberRepoExpireIfActiveFlipsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expiry := day(2024, time.January, 10)
	member := &models.Member{FirstName: "Ada", LastName: "Byron", Email: "ada@example.com", Status: enums.MemberStatusActive, ExpiryDate: &expiry}
	require.NoError(t, s.Members().Create(ctx, member))

	cutoff := day(2024, time.January, 11)
	due, err := s.Members().ListExpiredActive(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, due, 1)

	changed, err := s.Members().ExpireIfActive(ctx, member.ID, cutoff)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = s.Members().ExpireIfActive(ctx, member.ID, cutoff)
	require.NoError(t, err)
	require.False(t, changed)

	got, err := s.Members().FindByID(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberStatusExpired, got.Status)
}

func TestMemberRepoExpiryOnCutoffIsNotDue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expiry := day(2024, time.January, 11)
	require.NoError(t, s.Members().Create(ctx, &models.Member{FirstName: "Al", Email: "al@example.com", Status: enums.MemberStatusActive, ExpiryDate: &expiry}))

	due, err := s.Members().ListExpiredActive(ctx, day(2024, time.January, 11))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestMemberRepoUpdateMergesAndReportsMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	member := &models.Member{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Status: enums.MemberStatusPending}
	require.NoError(t, s.Members().Create(ctx, member))

	status := enums.MemberStatusFrozen
	updated, err := s.Members().Update(ctx, member.ID, store.MemberUpdate{Status: &status})
	require.NoError(t, err)
	require.Equal(t, enums.MemberStatusFrozen, updated.Status)
	require.Equal(t, "Hopper", updated.LastName)

	_, err = s.Members().Update(ctx, uuid.New(), store.MemberUpdate{Status: &status})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemberRepoDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Members().Create(ctx, &models.Member{FirstName: "A", Email: "dup@example.com"}))
	err := s.Members().Create(ctx, &models.Member{FirstName: "B", Email: "dup@example.com"})
	require.ErrorIs(t, err, store.ErrDuplicate)
}

func TestPaymentRepoTransitionIsGuarded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	payment := &models.Payment{MemberID: uuid.New(), PlanID: uuid.New(), Amount: 4999, PaymentMethod: "cash", PaymentDate: time.Now().UTC(), Status: enums.PaymentStatusPending}
	require.NoError(t, s.Payments().Create(ctx, payment))

	admin := uuid.New()
	transition := store.PaymentTransition{From: enums.PaymentStatusPending, To: enums.PaymentStatusVerified, VerifiedByID: &admin, VerifiedAt: time.Now().UTC()}

	ok, err := s.Payments().Transition(ctx, payment.ID, transition)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Payments().Transition(ctx, payment.ID, transition)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.Payments().FindByID(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusVerified, got.Status)
	require.NotNil(t, got.VerifiedByID)
	require.Equal(t, admin, *got.VerifiedByID)
}

func TestInTxRollsBackAllRepositories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Store) error {
		if err := tx.Members().Create(ctx, &models.Member{FirstName: "T", Email: "t@example.com"}); err != nil {
			return err
		}
		if err := tx.Activities().Append(ctx, &models.Activity{ActivityType: enums.ActivityMemberCreated, Description: "x"}); err != nil {
			return err
		}
		return tx.InTx(ctx, func(store.Store) error { return boom })
	})
	require.ErrorIs(t, err, boom)

	members, err := s.Members().List(ctx)
	require.NoError(t, err)
	require.Empty(t, members)

	activities, err := s.Activities().List(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Empty(t, activities)
}

func TestActivityRepoDeliveryBookkeeping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.Activity{ActivityType: enums.ActivityPaymentCreated, Description: "first"}
	b := &models.Activity{ActivityType: enums.ActivityPaymentVerified, Description: "second"}
	require.NoError(t, s.Activities().Append(ctx, a))
	require.NoError(t, s.Activities().Append(ctx, b))

	require.NoError(t, s.Activities().MarkDelivered(ctx, a.ID, time.Now().UTC()))
	require.NoError(t, s.Activities().MarkFailed(ctx, b.ID, "broker down"))

	pending, err := s.Activities().ListUndelivered(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, b.ID, pending[0].ID)
	require.Equal(t, 1, pending[0].AttemptCount)

	pending, err = s.Activities().ListUndelivered(ctx, 10, 1)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestPlanRepoListActiveOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Plans().Create(ctx, &models.MembershipPlan{Name: "Monthly", Price: 4999, Duration: 1, DurationType: "monthly", IsActive: true}))
	retired := &models.MembershipPlan{Name: "Legacy", Price: 2999, Duration: 1, DurationType: "month", IsActive: true}
	require.NoError(t, s.Plans().Create(ctx, retired))

	inactive := false
	_, err := s.Plans().Update(ctx, retired.ID, store.PlanUpdate{IsActive: &inactive})
	require.NoError(t, err)

	active, err := s.Plans().List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Monthly", active[0].Name)

	all, err := s.Plans().List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
