package models

import "time"

// Event is the catalog entity orders and tickets point at. Event management
// itself lives in the catalog collaborator; only the fields the lifecycle
// engine reads are modeled here.
type Event struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasStarted returns true once the event's start time has passed
func (e *Event) HasStarted(now time.Time) bool {
	return !now.Before(e.StartDate)
}
