package model

import "time"

// SlotLock is an advisory lock taken while a submission for a slot is being
// checked and written. It narrows the read-then-write window between
// concurrent submitters; the unique _id insert is the lock acquisition.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
