package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 1000
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 30 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var errBrokerUnavailable = errors.New("broker circuit open")

type activityRepository interface {
	ListUndelivered(ctx context.Context, limit, maxAttempts int) ([]models.Activity, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type broker interface {
	Publish(ctx context.Context, routingKey string, payload []byte, attrs map[string]string) error
	Ping(ctx context.Context) error
}

type ServiceParams struct {
	Config     config.ActivityConfig
	Logger     *logger.Logger
	Activities activityRepository
	Broker     broker
	Clock      func() time.Time
}

// Service forwards undelivered activity rows to the configured broker.
// Delivery is at-least-once: a crash between publish and MarkDelivered
// republishes the row on the next poll.
type Service struct {
	logg         *logger.Logger
	repo         activityRepository
	broker       broker
	breaker      *gobreaker.CircuitBreaker[struct{}]
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
	now          func() time.Time
}

// activityMessage is the wire shape published for each activity.
type activityMessage struct {
	ID          uuid.UUID          `json:"id"`
	Type        enums.ActivityType `json:"type"`
	Description string             `json:"description"`
	MemberID    *uuid.UUID         `json:"memberId,omitempty"`
	UserID      *uuid.UUID         `json:"userId,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Activities == nil {
		return nil, errors.New("activity repository is required")
	}
	if params.Broker == nil {
		return nil, errors.New("broker is required")
	}

	cfg := params.Config
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := cfg.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}

	s := &Service{
		logg:         params.Logger,
		repo:         params.Activities,
		broker:       params.Broker,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
		now:          now,
	}
	s.breaker = newBreaker(cfg, s.logg)
	return s, nil
}

func newBreaker(cfg config.ActivityConfig, logg *logger.Logger) *gobreaker.CircuitBreaker[struct{}] {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "activity-broker",
		MaxRequests: cfg.BreakerHalfOpenProbes,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "broker circuit state changed")
		},
	})
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.broker.Ping(ctx); err != nil {
		return fmt.Errorf("broker ping failed: %w", err)
	}

	interval := s.pollInterval
	backoff := interval
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "activity publisher context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "activity publisher batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}
		backoff = interval

		if processed == s.batchSize {
			continue
		}
		if err := sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// processBatch publishes one page of undelivered activities and returns how
// many rows it handled. Publish failures are recorded on the row and combined
// into the returned error so Run backs off.
func (s *Service) processBatch(ctx context.Context) (int, error) {
	rows, err := s.repo.ListUndelivered(ctx, s.batchSize, s.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("list undelivered activities: %w", err)
	}

	var errs error
	for i, row := range rows {
		fields := s.activityFields(row)
		pubErr := s.publish(ctx, row)
		if errors.Is(pubErr, errBrokerUnavailable) {
			return i, multierr.Append(errs, pubErr)
		}
		if pubErr != nil {
			fields["attempt_count"] = row.AttemptCount + 1
			fields["error"] = pubErr.Error()
			if row.AttemptCount+1 >= s.maxAttempts {
				s.logg.Warn(s.logg.WithFields(ctx, fields), "activity publish failed; giving up")
			} else {
				s.logg.Warn(s.logg.WithFields(ctx, fields), "activity publish failed")
			}
			errs = multierr.Append(errs, fmt.Errorf("publish %s: %w", row.ID, pubErr))
			if markErr := s.repo.MarkFailed(ctx, row.ID, pubErr.Error()); markErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("mark failed %s: %w", row.ID, markErr))
			}
			continue
		}
		if markErr := s.repo.MarkDelivered(ctx, row.ID, s.now().UTC()); markErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark delivered %s: %w", row.ID, markErr))
			continue
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "activity published")
	}
	return len(rows), errs
}

func (s *Service) publish(ctx context.Context, row models.Activity) error {
	payload, err := json.Marshal(activityMessage{
		ID:          row.ID,
		Type:        row.ActivityType,
		Description: row.Description,
		MemberID:    row.MemberID,
		UserID:      row.UserID,
		CreatedAt:   row.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}
	attrs := map[string]string{
		"activity_id":   row.ID.String(),
		"activity_type": string(row.ActivityType),
		"created_at":    row.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
		defer cancel()
		return struct{}{}, s.broker.Publish(publishCtx, routingKey(row.ActivityType), payload, attrs)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", errBrokerUnavailable, err)
	}
	return err
}

func (s *Service) activityFields(row models.Activity) map[string]any {
	fields := map[string]any{
		"activity_id":   row.ID.String(),
		"activity_type": row.ActivityType,
		"routing_key":   routingKey(row.ActivityType),
		"attempt_count": row.AttemptCount,
	}
	if row.MemberID != nil {
		fields["member_id"] = row.MemberID.String()
	}
	return fields
}

func routingKey(t enums.ActivityType) string {
	return "activity." + string(t)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, limit)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}
