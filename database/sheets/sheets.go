// Package sheets persists booking and customer rows to a Google
// Spreadsheet, the operational source of truth for availability.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"movebot/database/records"
	"movebot/models"
	"movebot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Bookings sheet column layout. Availability counting reads the move-date
// column; keep these in sync with the append order below.
const (
	bookingsRange   = "Bookings!A:S"
	customersRange  = "Customers!A:H"
	dateColumnRange = "Bookings!G:G" // Move Date
	tsColumnRange   = "Bookings!B:B" // Created At
)

// Repository is the Sheets-backed records.Repository.
type Repository struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewRepository(ctx context.Context, credentialsFile, spreadsheetID string) (*Repository, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &Repository{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// SaveBooking appends a booking row, then a customer row. The customer
// append failing does not roll back the booking row; both outcomes are
// logged independently.
func (r *Repository) SaveBooking(ctx context.Context, rec models.BookingRecord) (string, error) {
	logger := utils.GetLogger()
	now := time.Now()
	bookingID := records.BookingID(now)
	timestamp := now.Format(records.TimestampLayout)

	bookingRow := []interface{}{
		bookingID,
		timestamp,
		rec.Name,
		rec.Phone,
		rec.Email,
		rec.MoveType,
		rec.MoveDate,
		rec.TimePreference,
		rec.PickupAddress,
		rec.DropAddress,
		rec.HomeSize,
		rec.StairsElevator,
		rec.SpecialItems,
		rec.Notes,
		rec.EstimatedCost,
		rec.CrewSize,
		formatMiles(rec.DistanceMiles),
		"Confirmed",
		"CHAT-BOOKING",
	}
	if err := r.appendRow(ctx, bookingsRange, bookingRow); err != nil {
		return "", fmt.Errorf("sheets: append booking row: %w", err)
	}
	logger.Info("Booking row saved", zap.String("bookingID", bookingID))

	if rec.Name != "" || rec.Email != "" || rec.Phone != "" {
		customerRow := []interface{}{
			"CUST-" + uuid.NewString()[:8],
			rec.Name,
			rec.Phone,
			rec.Email,
			timestamp,                            // first contact
			now.Format(records.DateLayout),       // last contact
			"1",                                  // total bookings
			"",                                   // notes
		}
		if err := r.appendRow(ctx, customersRange, customerRow); err != nil {
			// Booking row already landed; report but do not fail the save.
			logger.Error("Customer row append failed", zap.Error(err))
		}
	}
	return bookingID, nil
}

func (r *Repository) appendRow(ctx context.Context, rangeRef string, row []interface{}) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, rangeRef, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// BookingDates reads the move-date column.
func (r *Repository) BookingDates(ctx context.Context) ([]string, error) {
	return r.readColumn(ctx, dateColumnRange)
}

// BookingTimestamps reads the created-at column.
func (r *Repository) BookingTimestamps(ctx context.Context) ([]string, error) {
	return r.readColumn(ctx, tsColumnRange)
}

func (r *Repository) readColumn(ctx context.Context, rangeRef string) ([]string, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, rangeRef).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", rangeRef, err)
	}
	var values []string
	for _, row := range resp.Values {
		if len(row) == 0 {
			values = append(values, "")
			continue
		}
		values = append(values, fmt.Sprint(row[0]))
	}
	return values, nil
}

func formatMiles(miles float64) string {
	if miles == 0 {
		return ""
	}
	return strconv.FormatFloat(miles, 'f', 1, 64)
}
