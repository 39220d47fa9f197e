// Package records defines the append-only booking/customer record store
// consumed by availability counting and booking persistence.
package records

import (
	"context"
	"time"

	"movebot/models"
)

// TimestampLayout is the created-at format written with every booking row.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date format used for move dates.
const DateLayout = "2006-01-02"

// Repository is the tabular backing store for bookings and customers.
// Rows are append-only; reads serve availability counting.
type Repository interface {
	// SaveBooking appends a booking row (and a customer row when contact
	// details are present) and returns the generated booking ID.
	SaveBooking(ctx context.Context, rec models.BookingRecord) (string, error)
	// BookingDates returns the raw move-date column, oldest first.
	// Header rows and blanks may be present; callers match exact dates.
	BookingDates(ctx context.Context) ([]string, error)
	// BookingTimestamps returns the raw created-at column values.
	// Unparsable entries are the caller's concern to skip.
	BookingTimestamps(ctx context.Context) ([]string, error)
}

// BookingID derives the human-scannable row ID for a booking created now.
func BookingID(now time.Time) string {
	return "BOOK-" + now.Format("20060102150405")
}
