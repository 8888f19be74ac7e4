package service

import (
	"context"
	"fmt"
	"time"

	apperrors "groundbook/pkg/errors"
	"groundbook/pkg/logger"
	"groundbook/pkg/model"
)

// BookingSource is the read surface the resolver needs: every record for a
// ground, unbounded by date. Date narrowing happens here, after the fetch.
type BookingSource interface {
	FindByGround(ctx context.Context, ground model.GroundType) ([]*model.Booking, error)
}

// AvailabilityService classifies each slot in a ground's catalog for a given
// civil date. Read-only: whoever renders the result must treat an error as
// "state unknown", never as available.
type AvailabilityService interface {
	ResolveSlotStates(ctx context.Context, ground model.GroundType, date time.Time) (map[string]model.SlotState, error)
}

type availabilityService struct {
	source BookingSource
	log    *logger.Logger
}

func NewAvailabilityService(source BookingSource, log *logger.Logger) AvailabilityService {
	return &availabilityService{
		source: source,
		log:    log,
	}
}

// ResolveSlotStates fetches the ground's records, keeps those whose stored
// date reduces to the same civil date, and folds the per-slot statuses:
// an approved record books the slot outright, otherwise any pending record
// holds it provisionally, and a slot whose records are all rejected is as
// available as one with no records at all.
func (s *availabilityService) ResolveSlotStates(ctx context.Context, ground model.GroundType, date time.Time) (map[string]model.SlotState, error) {
	if !ground.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown ground type: %s", ground))
	}

	records, err := s.source.FindByGround(ctx, ground)
	if err != nil {
		s.log.Error("Failed to fetch bookings for availability",
			"ground_type", ground,
			"date", model.CivilDate(date),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve slot availability", err)
	}

	target := model.CivilDate(date)
	var retained []*model.Booking
	for _, b := range records {
		if model.CivilDate(b.Date) == target {
			retained = append(retained, b)
		}
	}

	states := make(map[string]model.SlotState)
	for _, slot := range model.SlotCatalog(ground) {
		states[slot] = slotState(retained, slot)
	}

	s.log.Debug("Resolved slot states",
		"ground_type", ground,
		"date", target,
		"records_considered", len(retained),
	)
	return states, nil
}

// slotState folds the records for one slot. Approved takes absolute priority,
// pending reserves provisionally, rejected records free the slot.
func slotState(records []*model.Booking, slot string) model.SlotState {
	pending := false
	for _, b := range records {
		if b.TimeSlot != slot {
			continue
		}
		switch b.Status {
		case model.StatusApproved:
			return model.SlotBooked
		case model.StatusPending:
			pending = true
		}
	}
	if pending {
		return model.SlotPending
	}
	return model.SlotAvailable
}
