package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "groundbook/internal/bookings/errors"
	"groundbook/internal/bookings/events"
	"groundbook/internal/bookings/repository"
	"groundbook/pkg/config"
	apperrors "groundbook/pkg/errors"
	"groundbook/pkg/model"
	"groundbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// StatusFilterAll lists bookings regardless of status.
const StatusFilterAll = "all"

// BookingService is the booking lifecycle manager. Contact validation happens
// in the handler layer before Submit is called; the service trusts its input.
type BookingService interface {
	Submit(ctx context.Context, booking *model.Booking) error
	Decide(ctx context.Context, id string, outcome model.Outcome) (*model.Booking, error)
	List(ctx context.Context, statusFilter string, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Submit creates a booking record in the pending state. Any status the caller
// supplied is discarded. The insert is conditional: inside the transaction the
// slot is re-read and the write aborts if an approved record already holds it
// on that civil date. Competing pending records remain a normal state and are
// resolved by an administrator decision, never here.
func (s *bookingService) Submit(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)
	booking.Status = model.StatusPending

	lockID, err := s.acquireSlotLock(ctx, booking)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifySlotNotBooked(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to submit booking", "error", err)
		return err
	}

	s.cfg.Log.Info("Booking submitted",
		"id", booking.ID,
		"ground_type", booking.GroundType,
		"date", model.CivilDate(booking.Date),
		"time_slot", booking.TimeSlot,
	)
	s.publish(ctx, events.EventBookingSubmitted, booking)
	return nil
}

// Decide moves a pending booking to its terminal status. Repeating a decision
// with the same outcome is a no-op returning the unchanged record; flipping an
// already-decided record is a conflict. The transition itself is a conditional
// update matching on the expected prior status, so two racing administrators
// cannot both win.
func (s *bookingService) Decide(ctx context.Context, id string, outcome model.Outcome) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !outcome.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Outcome must be %q or %q", model.OutcomeApprove, model.OutcomeReject))
	}

	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := outcome.Status()

	if booking.Status == target {
		s.cfg.Log.Info("Booking already in requested status", "id", id, "status", target)
		return booking, nil
	}
	if booking.Status.Terminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("Booking is already %s and cannot be re-decided", booking.Status))
	}

	result, err := s.repo.UpdateStatus(ctx, id, model.StatusPending, target)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	if result.MatchedCount == 0 {
		// Lost a race with another decision. Re-read to tell the idempotent
		// repeat apart from a conflicting flip.
		current, err := s.findByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == target {
			return current, nil
		}
		return nil, apperrors.Conflict(fmt.Sprintf("Booking was concurrently decided as %s", current.Status))
	}

	booking.Status = target
	s.cfg.Log.Info("Booking decided", "id", id, "outcome", outcome, "status", target)

	eventType := events.EventBookingApproved
	if target == model.StatusRejected {
		eventType = events.EventBookingRejected
	}
	s.publish(ctx, eventType, booking)

	return booking, nil
}

// List returns bookings newest first, optionally narrowed to one status. The
// status narrowing is a store-side equality filter.
func (s *bookingService) List(ctx context.Context, statusFilter string, limit int, offset int64) ([]*model.Booking, int64, error) {
	var byStatus model.BookingStatus
	if statusFilter != "" && statusFilter != StatusFilterAll {
		byStatus = model.BookingStatus(statusFilter)
		if !byStatus.Valid() {
			return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown status filter: %s", statusFilter))
		}
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if byStatus == "" {
			count, errCount = s.repo.Count(ctx)
		} else {
			count, errCount = s.repo.CountByStatus(ctx, byStatus)
		}
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "status", statusFilter, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		if byStatus == "" {
			bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		} else {
			bookings, errFind = s.repo.FindByStatus(ctx, byStatus, limit, offset)
		}
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "status", statusFilter, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.findByID(ctx, id)
}

// --- Helpers ---

func (s *bookingService) findByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Name = sanitizer.SanitizeName(b.Name)
	b.Email = sanitizer.SanitizeEmail(b.Email)
	b.Phone = sanitizer.SanitizePhone(b.Phone)
}

func (s *bookingService) verifySlotNotBooked(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindByGround(ctx, booking.GroundType)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.TimeSlot != booking.TimeSlot || !model.SameCivilDate(b.Date, booking.Date) {
			continue
		}
		if b.Status == model.StatusApproved {
			return apperrors.Conflict(fmt.Sprintf(
				"Slot %q on %s is already booked",
				booking.TimeSlot,
				model.CivilDate(booking.Date),
			))
		}
	}
	return nil
}

// acquireSlotLock takes an advisory lock on the slot coordinates so two
// overlapping submissions serialize their check-then-insert. Returns conflict
// if another request currently holds the lock.
func (s *bookingService) acquireSlotLock(ctx context.Context, booking *model.Booking) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s_%s", booking.GroundType, model.CivilDate(booking.Date), booking.TimeSlot)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if err := s.publisher.PublishBookingEvent(ctx, eventType, booking); err != nil {
		// The store write already committed; the event is advisory.
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
