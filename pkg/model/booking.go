package model

import (
	"time"
)

// GroundType is the bookable resource category. Each ground carries its own
// fixed slot catalog.
type GroundType string

const (
	GroundCricket  GroundType = "cricket"
	GroundFootball GroundType = "football"
)

func (g GroundType) Valid() bool {
	switch g {
	case GroundCricket, GroundFootball:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking record. A record is
// created pending and moves exactly once to approved or rejected.
type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Outcome is an administrator decision on a pending booking.
type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeReject  Outcome = "reject"
)

func (o Outcome) Valid() bool {
	return o == OutcomeApprove || o == OutcomeReject
}

// Status returns the terminal booking status the outcome transitions to.
func (o Outcome) Status() BookingStatus {
	if o == OutcomeApprove {
		return StatusApproved
	}
	return StatusRejected
}

// SlotState is the computed availability of a time slot on a given date.
type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotPending   SlotState = "pending"
	SlotBooked    SlotState = "booked"
)

type Booking struct {
	ID         string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GroundType GroundType    `json:"ground_type" bson:"ground_type" validate:"required,oneof=cricket football"`
	Date       time.Time     `json:"date" bson:"date" validate:"required"`
	TimeSlot   string        `json:"time_slot" bson:"time_slot" validate:"required"`
	Status     BookingStatus `json:"status,omitempty" bson:"status" validate:"omitempty,oneof=pending approved rejected"`
	Name       string        `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email      string        `json:"email" bson:"email" validate:"required,contains=@,max=254"`
	Phone      string        `json:"phone" bson:"phone" validate:"required,len=10,numeric"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
}

var slotCatalogs = map[GroundType][]string{
	GroundCricket: {
		"09:00 AM - 05:00 PM",
	},
	GroundFootball: {
		"07:00 AM - 10:00 AM",
		"10:00 AM - 01:00 PM",
		"02:00 PM - 05:00 PM",
	},
}

// SlotCatalog returns the fixed time slots bookable on the ground, in display
// order. The returned slice is a copy.
func SlotCatalog(g GroundType) []string {
	catalog := slotCatalogs[g]
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// InCatalog reports whether the slot label belongs to the ground's catalog.
func InCatalog(g GroundType, slot string) bool {
	for _, s := range slotCatalogs[g] {
		if s == slot {
			return true
		}
	}
	return false
}
