package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"groundbook/pkg/config"
	apperrors "groundbook/pkg/errors"
	"groundbook/pkg/logger"
	"groundbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "groundbook/internal/bookings/errors"
	mongotx "groundbook/pkg/db/mongo"
)

type mockBookingRepo struct {
	create             func(ctx context.Context, booking *model.Booking) error
	findByID           func(ctx context.Context, id string) (*model.Booking, error)
	findByGround       func(ctx context.Context, ground model.GroundType) ([]*model.Booking, error)
	findByStatus       func(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	findAll            func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	updateStatus       func(ctx context.Context, id string, from, to model.BookingStatus) (*mongo.UpdateResult, error)
	count              func(ctx context.Context) (int64, error)
	countByStatus      func(ctx context.Context, status model.BookingStatus) (int64, error)
	executeTransaction func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return m.create(ctx, booking)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByID(ctx, id)
}

func (m *mockBookingRepo) FindByGround(ctx context.Context, ground model.GroundType) ([]*model.Booking, error) {
	return m.findByGround(ctx, ground)
}

func (m *mockBookingRepo) FindByStatus(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	return m.findByStatus(ctx, status, limit, offset)
}

func (m *mockBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return m.findAll(ctx, limit, offset)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*mongo.UpdateResult, error) {
	return m.updateStatus(ctx, id, from, to)
}

func (m *mockBookingRepo) Count(ctx context.Context) (int64, error) {
	return m.count(ctx)
}

func (m *mockBookingRepo) CountByStatus(ctx context.Context, status model.BookingStatus) (int64, error) {
	return m.countByStatus(ctx, status)
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransaction != nil {
		return m.executeTransaction(ctx, fn)
	}
	// Run the transaction body under a session context so repository calls
	// inside it take the in-transaction path.
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotLockRepo struct {
	create  func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleted []string
}

func (m *mockSlotLockRepo) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.create != nil {
		return m.create(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepo) Delete(_ context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, eventType string, _ *model.Booking) error {
	p.events = append(p.events, eventType)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:         logger.NewNop(),
		SlotLockTTL: 10 * time.Second,
	}
}

func pendingBooking(id string) *model.Booking {
	return &model.Booking{
		ID:         id,
		GroundType: model.GroundFootball,
		Date:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:   "07:00 AM - 10:00 AM",
		Status:     model.StatusPending,
		Name:       "Test User",
		Email:      "test@example.com",
		Phone:      "9876543210",
	}
}

func TestSubmitForcesPendingStatus(t *testing.T) {
	var created *model.Booking
	repo := &mockBookingRepo{
		findByGround: func(context.Context, model.GroundType) ([]*model.Booking, error) {
			return nil, nil
		},
		create: func(_ context.Context, b *model.Booking) error {
			b.ID = "65f2a1b3c4d5e6f7a8b9c0d1"
			created = b
			return nil
		},
	}
	locks := &mockSlotLockRepo{}
	pub := &recordingPublisher{}
	svc := NewBookingService(repo, locks, pub, testConfig())

	b := pendingBooking("")
	b.Status = model.StatusApproved // callers cannot self-approve

	if err := svc.Submit(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected booking to be created")
	}
	if created.Status != model.StatusPending {
		t.Errorf("created status = %q, want pending", created.Status)
	}
	if len(pub.events) != 1 || pub.events[0] != "booking.submitted" {
		t.Errorf("unexpected events: %v", pub.events)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("slot lock not released: %v", locks.deleted)
	}
}

func TestSubmitSanitizesContactFields(t *testing.T) {
	var created *model.Booking
	repo := &mockBookingRepo{
		findByGround: func(context.Context, model.GroundType) ([]*model.Booking, error) {
			return nil, nil
		},
		create: func(_ context.Context, b *model.Booking) error {
			created = b
			return nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	b := pendingBooking("")
	b.Name = "  Test   User "
	b.Email = " Test@Example.COM "
	b.Phone = "(987) 654-3210"

	if err := svc.Submit(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Test User" {
		t.Errorf("name = %q", created.Name)
	}
	if created.Email != "test@example.com" {
		t.Errorf("email = %q", created.Email)
	}
	if created.Phone != "9876543210" {
		t.Errorf("phone = %q", created.Phone)
	}
}

func TestSubmitConflictWhenApprovedHoldsSlot(t *testing.T) {
	// The committed record carries a different time of day; what matters is
	// the civil date.
	existing := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
	existing.Status = model.StatusApproved
	existing.Date = time.Date(2024, 6, 10, 14, 45, 0, 0, time.UTC)

	repo := &mockBookingRepo{
		findByGround: func(context.Context, model.GroundType) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
		create: func(context.Context, *model.Booking) error {
			t.Fatal("create must not run when the slot is booked")
			return nil
		},
	}
	locks := &mockSlotLockRepo{}
	svc := NewBookingService(repo, locks, nil, testConfig())

	err := svc.Submit(context.Background(), pendingBooking(""))
	if err == nil {
		t.Fatal("expected conflict")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
	if len(locks.deleted) != 1 {
		t.Error("slot lock must be released on failure too")
	}
}

func TestSubmitAllowsCompetingPending(t *testing.T) {
	other := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
	rejected := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d2")
	rejected.Status = model.StatusRejected

	created := false
	repo := &mockBookingRepo{
		findByGround: func(context.Context, model.GroundType) ([]*model.Booking, error) {
			return []*model.Booking{other, rejected}, nil
		},
		create: func(context.Context, *model.Booking) error {
			created = true
			return nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	if err := svc.Submit(context.Background(), pendingBooking("")); err != nil {
		t.Fatalf("competing pending records must not block submission: %v", err)
	}
	if !created {
		t.Error("expected booking to be created")
	}
}

func TestSubmitConflictWhenLockHeld(t *testing.T) {
	repo := &mockBookingRepo{
		findByGround: func(context.Context, model.GroundType) ([]*model.Booking, error) {
			t.Fatal("transaction must not start without the lock")
			return nil, nil
		},
	}
	locks := &mockSlotLockRepo{
		create: func(context.Context, *model.SlotLock) (*model.SlotLock, error) {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		},
	}
	svc := NewBookingService(repo, locks, nil, testConfig())

	err := svc.Submit(context.Background(), pendingBooking(""))
	if err == nil {
		t.Fatal("expected conflict while lock is held")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
}

func TestDecideApprovesPendingBooking(t *testing.T) {
	b := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
	var gotFrom, gotTo model.BookingStatus
	repo := &mockBookingRepo{
		findByID: func(context.Context, string) (*model.Booking, error) {
			return b, nil
		},
		updateStatus: func(_ context.Context, _ string, from, to model.BookingStatus) (*mongo.UpdateResult, error) {
			gotFrom, gotTo = from, to
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	}
	pub := &recordingPublisher{}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, pub, testConfig())

	decided, err := svc.Decide(context.Background(), b.ID, model.OutcomeApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.Status != model.StatusApproved {
		t.Errorf("status = %q, want approved", decided.Status)
	}
	if gotFrom != model.StatusPending || gotTo != model.StatusApproved {
		t.Errorf("conditional update matched %q->%q, want pending->approved", gotFrom, gotTo)
	}
	if len(pub.events) != 1 || pub.events[0] != "booking.approved" {
		t.Errorf("unexpected events: %v", pub.events)
	}
}

func TestDecideRepeatSameOutcomeIsIdempotent(t *testing.T) {
	b := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
	b.Status = model.StatusRejected
	repo := &mockBookingRepo{
		findByID: func(context.Context, string) (*model.Booking, error) {
			return b, nil
		},
		updateStatus: func(context.Context, string, model.BookingStatus, model.BookingStatus) (*mongo.UpdateResult, error) {
			t.Fatal("no update must run for an idempotent repeat")
			return nil, nil
		},
	}
	pub := &recordingPublisher{}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, pub, testConfig())

	decided, err := svc.Decide(context.Background(), b.ID, model.OutcomeReject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.Status != model.StatusRejected {
		t.Errorf("status = %q, want rejected", decided.Status)
	}
	if len(pub.events) != 0 {
		t.Errorf("idempotent repeat must not re-publish: %v", pub.events)
	}
}

func TestDecideFlipConflict(t *testing.T) {
	b := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
	b.Status = model.StatusApproved
	repo := &mockBookingRepo{
		findByID: func(context.Context, string) (*model.Booking, error) {
			return b, nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	_, err := svc.Decide(context.Background(), b.ID, model.OutcomeReject)
	if err == nil {
		t.Fatal("flipping an approved booking must conflict")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
}

func TestDecideRaceResolvedByReRead(t *testing.T) {
	calls := 0
	repo := &mockBookingRepo{
		findByID: func(context.Context, string) (*model.Booking, error) {
			calls++
			b := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
			if calls > 1 {
				// Another administrator won the race with the same outcome.
				b.Status = model.StatusApproved
			}
			return b, nil
		},
		updateStatus: func(context.Context, string, model.BookingStatus, model.BookingStatus) (*mongo.UpdateResult, error) {
			return &mongo.UpdateResult{MatchedCount: 0}, nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	decided, err := svc.Decide(context.Background(), "65f2a1b3c4d5e6f7a8b9c0d1", model.OutcomeApprove)
	if err != nil {
		t.Fatalf("same-outcome race must resolve idempotently: %v", err)
	}
	if decided.Status != model.StatusApproved {
		t.Errorf("status = %q, want approved", decided.Status)
	}
}

func TestDecideRaceWithOppositeOutcomeConflicts(t *testing.T) {
	calls := 0
	repo := &mockBookingRepo{
		findByID: func(context.Context, string) (*model.Booking, error) {
			calls++
			b := pendingBooking("65f2a1b3c4d5e6f7a8b9c0d1")
			if calls > 1 {
				b.Status = model.StatusRejected
			}
			return b, nil
		},
		updateStatus: func(context.Context, string, model.BookingStatus, model.BookingStatus) (*mongo.UpdateResult, error) {
			return &mongo.UpdateResult{MatchedCount: 0}, nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	_, err := svc.Decide(context.Background(), "65f2a1b3c4d5e6f7a8b9c0d1", model.OutcomeApprove)
	if err == nil {
		t.Fatal("opposite-outcome race must conflict")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
}

func TestDecideNotFound(t *testing.T) {
	repo := &mockBookingRepo{
		findByID: func(context.Context, string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	_, err := svc.Decide(context.Background(), "65f2a1b3c4d5e6f7a8b9c0d1", model.OutcomeApprove)
	if err == nil {
		t.Fatal("expected not found")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.CodeNotFound)
	}
}

func TestDecideRejectsInvalidInput(t *testing.T) {
	svc := NewBookingService(&mockBookingRepo{}, &mockSlotLockRepo{}, nil, testConfig())

	if _, err := svc.Decide(context.Background(), "", model.OutcomeApprove); err == nil {
		t.Error("expected error for empty ID")
	}
	if _, err := svc.Decide(context.Background(), "65f2a1b3c4d5e6f7a8b9c0d1", "maybe"); err == nil {
		t.Error("expected error for unknown outcome")
	}
	if _, err := svc.Decide(context.Background(), "65f2a1b3c4d5e6f7a8b9c0d1", "approved"); err == nil {
		t.Error("outcome must be the imperative form, not a status")
	}
}

func TestListAll(t *testing.T) {
	bookings := []*model.Booking{pendingBooking("a"), pendingBooking("b")}
	repo := &mockBookingRepo{
		count: func(context.Context) (int64, error) {
			return 42, nil
		},
		findAll: func(_ context.Context, limit int, offset int64) ([]*model.Booking, error) {
			if limit != 10 || offset != 20 {
				t.Errorf("pagination not forwarded: limit=%d offset=%d", limit, offset)
			}
			return bookings, nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	got, count, err := svc.List(context.Background(), StatusFilterAll, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 || len(got) != 2 {
		t.Errorf("got count=%d len=%d", count, len(got))
	}
}

func TestListByStatus(t *testing.T) {
	repo := &mockBookingRepo{
		countByStatus: func(_ context.Context, status model.BookingStatus) (int64, error) {
			if status != model.StatusPending {
				t.Errorf("count status = %q", status)
			}
			return 1, nil
		},
		findByStatus: func(_ context.Context, status model.BookingStatus, _ int, _ int64) ([]*model.Booking, error) {
			if status != model.StatusPending {
				t.Errorf("find status = %q", status)
			}
			return []*model.Booking{pendingBooking("a")}, nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	got, count, err := svc.List(context.Background(), "pending", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(got) != 1 {
		t.Errorf("got count=%d len=%d", count, len(got))
	}
}

func TestListUnknownStatusFilter(t *testing.T) {
	svc := NewBookingService(&mockBookingRepo{}, &mockSlotLockRepo{}, nil, testConfig())

	_, _, err := svc.List(context.Background(), "archived", 10, 0)
	if err == nil {
		t.Fatal("expected error for unknown status filter")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}
}

func TestListSurfacesStoreErrors(t *testing.T) {
	repo := &mockBookingRepo{
		count: func(context.Context) (int64, error) {
			return 0, errors.New("count failed")
		},
		findAll: func(context.Context, int, int64) ([]*model.Booking, error) {
			return nil, nil
		},
	}
	svc := NewBookingService(repo, &mockSlotLockRepo{}, nil, testConfig())

	_, _, err := svc.List(context.Background(), "", 10, 0)
	if err == nil {
		t.Fatal("expected error when count fails")
	}
}
