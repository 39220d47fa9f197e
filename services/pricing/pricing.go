// Package pricing maps move details and rolling weekly demand to a crew
// recommendation and published hourly rate. It never computes a grand
// total; the assistant quotes rate plus policy.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"movebot/models"
	"movebot/services/availability"
	"movebot/services/distance"
)

// ErrUnroutable signals that the distance service could not resolve the
// route; callers ask for corrected addresses instead of guessing a price.
var ErrUnroutable = errors.New("could not calculate route distance")

// LongDistanceThresholdMiles is the pickup→drop boundary between local
// and long-distance moves. Exactly 50 miles is long-distance.
const LongDistanceThresholdMiles = 50.0

// PeakSurchargeUSD is the flat surcharge noted for configured peak dates.
const PeakSurchargeUSD = 25

// Demand tiers bucketed from this week's booking count.
const (
	TierLow  = "0-2"
	TierMid  = "2-4"
	TierHigh = "5-7"
)

// Crew labels as published to customers.
const (
	CrewTwo   = "2 movers + truck"
	CrewThree = "3 movers + truck"
	CrewFour  = "4 movers + truck"
)

// anchorPrice is the internal tier-adjusted anchor per crew size. Tracked
// in every estimate, surfaced to no one.
var anchorPrice = map[string]map[string]int{
	CrewTwo:   {TierLow: 100, TierMid: 125, TierHigh: 150},
	CrewThree: {TierLow: 125, TierMid: 150, TierHigh: 175},
	CrewFour:  {TierLow: 180, TierMid: 200, TierHigh: 250},
}

// hourlyRate is the published flat rate per crew size.
var hourlyRate = map[string]int{
	CrewTwo:   125,
	CrewThree: 150,
	CrewFour:  200,
}

// Engine computes estimates from geocoded distances and weekly demand.
type Engine struct {
	Distance      distance.Service
	Availability  *availability.Tracker
	OfficeAddress string
	PeakDates     map[string]bool
}

// DemandTier buckets this week's job count.
func DemandTier(weeklyJobs int) string {
	switch {
	case weeklyJobs <= 2:
		return TierLow
	case weeklyJobs <= 4:
		return TierMid
	default:
		return TierHigh
	}
}

// SelectCrew applies the fixed crew rule table over (rooms, stairs).
func SelectCrew(rooms int, stairsElevator bool) string {
	switch {
	case rooms <= 2 && !stairsElevator:
		return CrewTwo
	case rooms == 2 && stairsElevator, rooms == 3 && !stairsElevator:
		return CrewThree
	default:
		return CrewFour
	}
}

// HourlyRate maps a crew label to its published rate. Unrecognized labels
// map to 0, a configuration error upstream.
func HourlyRate(crew string) int {
	return hourlyRate[crew]
}

// Estimate computes the recommendation and pricing context for a move.
// moveDate may be empty; it only drives the peak surcharge note.
func (e *Engine) Estimate(ctx context.Context, rooms int, pickup, drop string, stairsElevator bool, moveDate string) (models.Estimate, error) {
	totalRoute, err := e.Distance.RoundTripMiles(ctx, e.OfficeAddress, pickup, drop)
	if err != nil {
		return models.Estimate{}, fmt.Errorf("%w: %v", ErrUnroutable, err)
	}
	oneWay, err := e.Distance.OneWayMiles(ctx, pickup, drop)
	if err != nil {
		return models.Estimate{}, fmt.Errorf("%w: %v", ErrUnroutable, err)
	}

	category := models.MoveLocal
	if oneWay >= LongDistanceThresholdMiles {
		category = models.MoveLongDistance
	}

	weeklyJobs := e.Availability.CountInCurrentWeek(ctx)
	tier := DemandTier(weeklyJobs)
	crew := SelectCrew(rooms, stairsElevator)

	surcharge := 0
	if moveDate != "" && e.PeakDates[moveDate] {
		surcharge = PeakSurchargeUSD
	}

	var notes []string
	if category == models.MoveLongDistance {
		notes = append(notes, "Packing materials are free for long-distance moves.")
	}
	if surcharge > 0 {
		notes = append(notes, fmt.Sprintf("A $%d peak-date surcharge applies on %s.", surcharge, moveDate))
	}

	return models.Estimate{
		Rooms:             rooms,
		StairsElevator:    stairsElevator,
		CrewSize:          crew,
		BasePrice:         anchorPrice[crew][tier],
		HourlyRate:        HourlyRate(crew),
		Tier:              tier,
		TotalRouteMiles:   totalRoute,
		PickupDropMiles:   oneWay,
		PeakSurcharge:     surcharge,
		MoveCategory:      category,
		Notes:             notes,
		TravelTimeMinutes: models.TravelTimeMinutes,
		MinimumHours:      models.MinimumHours,
	}, nil
}
