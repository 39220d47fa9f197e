package pricing

import (
	"context"
	"errors"
	"testing"

	"movebot/models"
	"movebot/services/availability"
)

type fakeDistance struct {
	oneWay    float64
	roundTrip float64
	err       error
}

func (f *fakeDistance) OneWayMiles(context.Context, string, string) (float64, error) {
	return f.oneWay, f.err
}

func (f *fakeDistance) RoundTripMiles(context.Context, string, string, string) (float64, error) {
	return f.roundTrip, f.err
}

type fakeRepo struct {
	dates      []string
	timestamps []string
}

func (f *fakeRepo) SaveBooking(context.Context, models.BookingRecord) (string, error) {
	return "BOOK-test", nil
}
func (f *fakeRepo) BookingDates(context.Context) ([]string, error)      { return f.dates, nil }
func (f *fakeRepo) BookingTimestamps(context.Context) ([]string, error) { return f.timestamps, nil }

func TestSelectCrew(t *testing.T) {
	tests := []struct {
		name   string
		rooms  int
		stairs bool
		want   string
	}{
		{"studio no stairs", 0, false, CrewTwo},
		{"one bedroom no stairs", 1, false, CrewTwo},
		{"two bedroom no stairs", 2, false, CrewTwo},
		{"two bedroom with stairs", 2, true, CrewThree},
		{"three bedroom no stairs", 3, false, CrewThree},
		{"three bedroom with stairs", 3, true, CrewFour},
		{"four bedroom no stairs", 4, false, CrewFour},
		{"five bedroom with stairs", 5, true, CrewFour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectCrew(tt.rooms, tt.stairs); got != tt.want {
				t.Errorf("SelectCrew(%d, %v) = %q, want %q", tt.rooms, tt.stairs, got, tt.want)
			}
		})
	}
}

func TestHourlyRate(t *testing.T) {
	tests := []struct {
		crew string
		want int
	}{
		{CrewTwo, 125},
		{CrewThree, 150},
		{CrewFour, 200},
		{"9 movers + truck", 0},
	}
	for _, tt := range tests {
		if got := HourlyRate(tt.crew); got != tt.want {
			t.Errorf("HourlyRate(%q) = %d, want %d", tt.crew, got, tt.want)
		}
	}
}

func TestDemandTier(t *testing.T) {
	tests := []struct {
		jobs int
		want string
	}{
		{0, TierLow},
		{2, TierLow},
		{3, TierMid},
		{4, TierMid},
		{5, TierHigh},
		{12, TierHigh},
	}
	for _, tt := range tests {
		if got := DemandTier(tt.jobs); got != tt.want {
			t.Errorf("DemandTier(%d) = %q, want %q", tt.jobs, got, tt.want)
		}
	}
}

func TestEstimateLocalMove(t *testing.T) {
	eng := &Engine{
		Distance:      &fakeDistance{oneWay: 12.4, roundTrip: 31.7},
		Availability:  availability.NewTracker(&fakeRepo{}, 3),
		OfficeAddress: "2800 Rolido Dr, Houston, TX",
	}

	est, err := eng.Estimate(context.Background(), 3, "123 Main St", "456 Oak Ave", false, "")
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if est.CrewSize != CrewThree {
		t.Errorf("crew = %q, want %q", est.CrewSize, CrewThree)
	}
	if est.HourlyRate != 150 {
		t.Errorf("rate = %d, want 150", est.HourlyRate)
	}
	if est.MoveCategory != models.MoveLocal {
		t.Errorf("category = %q, want %q", est.MoveCategory, models.MoveLocal)
	}
	if est.PickupDropMiles != 12.4 {
		t.Errorf("miles = %v, want 12.4", est.PickupDropMiles)
	}
	if est.Tier != TierLow {
		t.Errorf("tier = %q, want %q", est.Tier, TierLow)
	}
	if est.MinimumHours != models.MinimumHours || est.TravelTimeMinutes != models.TravelTimeMinutes {
		t.Errorf("policy = (%d h, %d min), want (%d, %d)",
			est.MinimumHours, est.TravelTimeMinutes, models.MinimumHours, models.TravelTimeMinutes)
	}
}

func TestEstimateLongDistanceBoundary(t *testing.T) {
	tests := []struct {
		name   string
		oneWay float64
		want   string
	}{
		{"just under threshold", 49.9, models.MoveLocal},
		{"at threshold", 50.0, models.MoveLongDistance},
		{"far over threshold", 212.0, models.MoveLongDistance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &Engine{
				Distance:      &fakeDistance{oneWay: tt.oneWay, roundTrip: tt.oneWay * 2},
				Availability:  availability.NewTracker(&fakeRepo{}, 3),
				OfficeAddress: "office",
			}
			est, err := eng.Estimate(context.Background(), 2, "a", "b", false, "")
			if err != nil {
				t.Fatalf("Estimate returned error: %v", err)
			}
			if est.MoveCategory != tt.want {
				t.Errorf("category at %.1f mi = %q, want %q", tt.oneWay, est.MoveCategory, tt.want)
			}
		})
	}
}

func TestEstimateLongDistanceFreePacking(t *testing.T) {
	eng := &Engine{
		Distance:      &fakeDistance{oneWay: 212, roundTrip: 430},
		Availability:  availability.NewTracker(&fakeRepo{}, 3),
		OfficeAddress: "office",
	}
	est, err := eng.Estimate(context.Background(), 2, "Houston, TX", "Dallas, TX", false, "")
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	found := false
	for _, n := range est.Notes {
		if n == "Packing materials are free for long-distance moves." {
			found = true
		}
	}
	if !found {
		t.Errorf("long-distance estimate missing free packing note, notes = %v", est.Notes)
	}
}

func TestEstimatePeakSurcharge(t *testing.T) {
	eng := &Engine{
		Distance:      &fakeDistance{oneWay: 10, roundTrip: 25},
		Availability:  availability.NewTracker(&fakeRepo{}, 3),
		OfficeAddress: "office",
		PeakDates:     map[string]bool{"2025-12-31": true},
	}

	est, err := eng.Estimate(context.Background(), 2, "a", "b", false, "2025-12-31")
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if est.PeakSurcharge != PeakSurchargeUSD {
		t.Errorf("surcharge = %d, want %d", est.PeakSurcharge, PeakSurchargeUSD)
	}

	est, err = eng.Estimate(context.Background(), 2, "a", "b", false, "2025-12-30")
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if est.PeakSurcharge != 0 {
		t.Errorf("surcharge on off-peak date = %d, want 0", est.PeakSurcharge)
	}
}

func TestEstimateUnroutable(t *testing.T) {
	eng := &Engine{
		Distance:      &fakeDistance{err: errors.New("NOT_FOUND")},
		Availability:  availability.NewTracker(&fakeRepo{}, 3),
		OfficeAddress: "office",
	}
	_, err := eng.Estimate(context.Background(), 2, "gibberish", "nowhere", false, "")
	if !errors.Is(err, ErrUnroutable) {
		t.Errorf("err = %v, want ErrUnroutable", err)
	}
}
