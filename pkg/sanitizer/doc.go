// Package sanitizer normalizes requester-supplied contact fields before they
// are validated and persisted. Sanitization never rejects input; rejection is
// the validator's job.
package sanitizer
