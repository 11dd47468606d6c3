package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

func TestInTxDiscardsWritesOnError(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Members().Create(ctx, &models.Member{FirstName: "Kept", Email: "kept@example.com"}))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.Members().Create(ctx, &models.Member{FirstName: "Dropped", Email: "dropped@example.com"}))
		require.NoError(t, tx.Activities().Append(ctx, &models.Activity{ActivityType: enums.ActivityMemberCreated}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	members, err := s.Members().List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Kept", members[0].FirstName)

	activities, err := s.Activities().List(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Empty(t, activities)
}

func TestInTxDiscardsWritesOnPanic(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.Panics(t, func() {
		_ = s.InTx(ctx, func(tx store.Store) error {
			_ = tx.Plans().Create(ctx, &models.MembershipPlan{Name: "Ghost"})
			panic("kaboom")
		})
	})

	plans, err := s.Plans().List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, plans)
}

func TestInTxRollbackKeepsConcurrentCommittedWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	member := &models.Member{FirstName: "A", Email: "a@example.com"}
	require.NoError(t, s.Members().Create(ctx, member))

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.InTx(ctx, func(tx store.Store) error {
			if err := tx.Members().Create(ctx, &models.Member{FirstName: "Pending", Email: "pending@example.com"}); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("plan not found")
		})
	}()
	<-entered

	members, err := s.Members().List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1, "uncommitted writes must stay private to the transaction")

	renamed := "Renamed"
	updateDone := make(chan error, 1)
	go func() {
		_, err := s.Members().Update(ctx, member.ID, store.MemberUpdate{FirstName: &renamed})
		updateDone <- err
	}()

	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-updateDone)

	got, err := s.Members().FindByID(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.FirstName)

	members, err = s.Members().List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestInTxCommitPublishesWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx store.Store) error {
		return tx.Plans().Create(ctx, &models.MembershipPlan{Name: "Monthly", Price: 3000, Duration: 1, DurationType: enums.DurationTypeMonthly})
	}))

	plans, err := s.Plans().List(ctx, false)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, "Monthly", plans[0].Name)
}

func TestExpireIfActiveIsExactlyOnceUnderConcurrency(t *testing.T) {
	s := New()
	ctx := context.Background()

	expiry := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	member := &models.Member{FirstName: "Race", Email: "race@example.com", Status: enums.MemberStatusActive, ExpiryDate: &expiry}
	require.NoError(t, s.Members().Create(ctx, member))

	cutoff := expiry.AddDate(0, 0, 5)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		flipped int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Members().ExpireIfActive(ctx, member.ID, cutoff)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				flipped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, flipped)
}

func TestRepositoriesReportNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Members().FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Plans().FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Payments().FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.StaffUsers().FindByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	first, err := store.SeedDemo(ctx, s, now)
	require.NoError(t, err)
	require.Equal(t, 4, first.Plans)
	require.Equal(t, 3, first.Members)

	second, err := store.SeedDemo(ctx, s, now)
	require.NoError(t, err)
	require.Zero(t, second.Plans)

	due, err := s.Members().ListExpiredActive(ctx, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)
}

func TestPaymentListFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	memberA, memberB := uuid.New(), uuid.New()

	for _, p := range []models.Payment{
		{MemberID: memberA, Status: enums.PaymentStatusPending},
		{MemberID: memberA, Status: enums.PaymentStatusVerified},
		{MemberID: memberB, Status: enums.PaymentStatusPending},
	} {
		p := p
		require.NoError(t, s.Payments().Create(ctx, &p))
	}

	pending := enums.PaymentStatusPending
	rows, err := s.Payments().List(ctx, store.PaymentFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = s.Payments().List(ctx, store.PaymentFilter{MemberID: &memberA, Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, enums.PaymentStatusVerified, rows[0].Status)
}
