package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dispatchRepo "chefdispatch/database/repository/dispatch"
	"chefdispatch/models"
	"chefdispatch/services/notification"
	"chefdispatch/services/tasks"
	"chefdispatch/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NegotiationService manages the proposed-shift lifecycle:
// Proposed -> {Accepted, Rejected, Expired}. Accepting commits the booking
// shift atomically. Picking which booking to displace is the caller's job.
type NegotiationService interface {
	ProposeShift(ctx context.Context, bookingID string, newTime time.Time, reason string) (*models.NegotiationRequest, error)
	Respond(ctx context.Context, negotiationID string, accept bool) (*models.NegotiationRequest, error)
	Get(ctx context.Context, negotiationID string) (*models.NegotiationRequest, error)
	Expire(ctx context.Context, negotiationID string) error
}

// errStoreConflict reports a compare-and-set that lost to a concurrent
// writer. Callers reload and treat the winning state as authoritative.
var errStoreConflict = errors.New("negotiation modified concurrently")

// NegotiationStore persists serialized negotiations with a TTL. State
// transitions go through CompareAndSet so only one writer can move a
// negotiation out of the proposed state.
type NegotiationStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// CompareAndSet writes value only while the stored value still equals
	// expected, returning errStoreConflict otherwise.
	CompareAndSet(ctx context.Context, key, expected, value string, ttl time.Duration) error
}

// RedisNegotiationStore is the production store.
type RedisNegotiationStore struct {
	Client *redis.Client
}

func (s *RedisNegotiationStore) Get(ctx context.Context, key string) (string, error) {
	return s.Client.Get(ctx, key).Result()
}

func (s *RedisNegotiationStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisNegotiationStore) CompareAndSet(ctx context.Context, key, expected, value string, ttl time.Duration) error {
	err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil {
			return err
		}
		if current != expected {
			return errStoreConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return errStoreConflict
	}
	return err
}

// DefaultNegotiationService is the production implementation. Open
// negotiations live in Redis; an asynq task fires at the deadline to
// expire the ones nobody answered.
type DefaultNegotiationService struct {
	BookingRepo dispatchRepo.BookingRepository
	Store       NegotiationStore
	Notifier    notification.NotificationService
	TaskClient  *asynq.Client
	TTL         time.Duration
	Logger      *zap.Logger
}

// storeRetention keeps terminal negotiations readable for a day past the
// response window.
const storeRetention = 24 * time.Hour

func (s *DefaultNegotiationService) ProposeShift(ctx context.Context, bookingID string, newTime time.Time, reason string) (*models.NegotiationRequest, error) {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cannot negotiate unknown booking: %w", err)
	}

	now := time.Now()
	req := &models.NegotiationRequest{
		ID:           uuid.New().String(),
		BookingID:    booking.ID,
		CustomerID:   booking.CustomerID,
		ProposedTime: newTime,
		Reason:       reason,
		Status:       models.NegotiationProposed,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl()),
	}
	if err := s.save(ctx, req); err != nil {
		return nil, err
	}

	title := "Could we adjust your event time?"
	body := fmt.Sprintf("We'd like to move your %s booking to %s. %s Tap to respond.",
		booking.Date, newTime.Format("3:04 PM"), reason)
	if err := s.Notifier.SendCustomerPush(ctx, booking.CustomerID, title, body, map[string]string{
		"type":          "negotiation_proposed",
		"negotiationId": req.ID,
		"bookingId":     booking.ID,
	}); err != nil {
		// An undelivered proposal can never be accepted; fail it now.
		return nil, fmt.Errorf("failed to deliver shift proposal: %w", err)
	}

	if s.TaskClient != nil {
		task, opts, err := tasks.NewNegotiationExpiryTask(
			models.NegotiationExpiryPayload{NegotiationID: req.ID}, req.ExpiresAt)
		if err == nil {
			_, err = s.TaskClient.Enqueue(task, opts...)
		}
		if err != nil {
			s.logger().Warn("failed to schedule negotiation expiry",
				zap.String("negotiationId", req.ID), zap.Error(err))
		}
	}

	s.logger().Info("shift proposed",
		zap.String("negotiationId", req.ID),
		zap.String("bookingId", booking.ID),
		zap.Time("proposedTime", newTime))
	return req, nil
}

func (s *DefaultNegotiationService) Respond(ctx context.Context, negotiationID string, accept bool) (*models.NegotiationRequest, error) {
	raw, req, err := s.load(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if req.Terminal() {
		return nil, &NegotiationResolvedError{ID: req.ID, Status: req.Status}
	}

	now := time.Now()
	req.RespondedAt = &now

	if !accept {
		req.Status = models.NegotiationRejected
		if err := s.transition(ctx, raw, req); err != nil {
			return nil, s.resolveConflict(ctx, negotiationID, err)
		}
		return req, nil
	}

	// Claim the negotiation first: once the compare-and-set lands no other
	// response can slip in, so the booking shift below has a single owner.
	req.Status = models.NegotiationAccepted
	if err := s.transition(ctx, raw, req); err != nil {
		return nil, s.resolveConflict(ctx, negotiationID, err)
	}

	if err := s.BookingRepo.ShiftBookingTime(ctx, req.BookingID, req.ProposedTime); err != nil {
		s.reopen(ctx, req)
		return nil, fmt.Errorf("accepted shift could not be committed: %w", err)
	}

	s.logger().Info("negotiation accepted, booking shifted",
		zap.String("negotiationId", req.ID),
		zap.String("bookingId", req.BookingID))
	return req, nil
}

func (s *DefaultNegotiationService) Get(ctx context.Context, negotiationID string) (*models.NegotiationRequest, error) {
	_, req, err := s.load(ctx, negotiationID)
	return req, err
}

// Expire closes a still-open negotiation. Responses that already landed
// win; expiry is a no-op on terminal states.
func (s *DefaultNegotiationService) Expire(ctx context.Context, negotiationID string) error {
	raw, req, err := s.load(ctx, negotiationID)
	if err != nil {
		return nil // already gone from the store
	}
	if req.Terminal() {
		return nil
	}
	req.Status = models.NegotiationExpired
	if err := s.transition(ctx, raw, req); err != nil {
		if errors.Is(err, errStoreConflict) {
			return nil // a response beat the deadline
		}
		return err
	}
	s.logger().Info("negotiation expired", zap.String("negotiationId", req.ID))
	return nil
}

func (s *DefaultNegotiationService) load(ctx context.Context, negotiationID string) (string, *models.NegotiationRequest, error) {
	data, err := s.Store.Get(ctx, utils.NegotiationPrefix+negotiationID)
	if err != nil {
		return "", nil, fmt.Errorf("negotiation %s not found or expired: %w", negotiationID, err)
	}
	var req models.NegotiationRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return "", nil, fmt.Errorf("failed to parse negotiation %s: %w", negotiationID, err)
	}
	return data, &req, nil
}

// transition writes req only if the stored copy is still the one the
// caller read, so exactly one writer moves a negotiation to a terminal
// state.
func (s *DefaultNegotiationService) transition(ctx context.Context, expectedRaw string, req *models.NegotiationRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal negotiation: %w", err)
	}
	retention := s.ttl() + storeRetention
	if err := s.Store.CompareAndSet(ctx, utils.NegotiationPrefix+req.ID, expectedRaw, string(data), retention); err != nil {
		return err
	}
	return nil
}

// resolveConflict maps a lost compare-and-set onto the state the winning
// writer left behind.
func (s *DefaultNegotiationService) resolveConflict(ctx context.Context, negotiationID string, err error) error {
	if !errors.Is(err, errStoreConflict) {
		return err
	}
	if _, current, loadErr := s.load(ctx, negotiationID); loadErr == nil && current.Terminal() {
		return &NegotiationResolvedError{ID: current.ID, Status: current.Status}
	}
	return fmt.Errorf("negotiation %s was modified concurrently, please retry", negotiationID)
}

// reopen rolls an accepted negotiation back to proposed after the booking
// shift failed, so the customer can answer again. Best effort: if someone
// else touched the record in between, their state stands.
func (s *DefaultNegotiationService) reopen(ctx context.Context, req *models.NegotiationRequest) {
	accepted, err := json.Marshal(req)
	if err != nil {
		return
	}
	restored := *req
	restored.Status = models.NegotiationProposed
	restored.RespondedAt = nil
	if err := s.transition(ctx, string(accepted), &restored); err != nil {
		s.logger().Warn("failed to reopen negotiation after shift failure",
			zap.String("negotiationId", req.ID), zap.Error(err))
	}
}

func (s *DefaultNegotiationService) save(ctx context.Context, req *models.NegotiationRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal negotiation: %w", err)
	}
	retention := s.ttl() + storeRetention
	if err := s.Store.Set(ctx, utils.NegotiationPrefix+req.ID, string(data), retention); err != nil {
		return fmt.Errorf("failed to store negotiation: %w", err)
	}
	return nil
}

func (s *DefaultNegotiationService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 2 * time.Hour
}

func (s *DefaultNegotiationService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}
