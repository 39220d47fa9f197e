package models

// Fixed policy communicated with every quote. The final total is never
// computed here; the assistant quotes rate plus policy and a human closes
// the number.
const (
	TravelTimeMinutes = 30
	MinimumHours      = 3
)

// Estimate is the pricing engine output. BasePrice is the tier-adjusted
// internal anchor; it is tracked for downstream consumers but never shown
// to the customer.
type Estimate struct {
	Rooms             int      `json:"rooms"`
	StairsElevator    bool     `json:"stairs_elevator"`
	CrewSize          string   `json:"crew_size"`
	BasePrice         int      `json:"base_price"`
	HourlyRate        int      `json:"hourly_rate"`
	Tier              string   `json:"tier"`
	TotalRouteMiles   float64  `json:"total_route_miles"`
	PickupDropMiles   float64  `json:"pickup_drop_miles"`
	PeakSurcharge     int      `json:"peak_surcharge"`
	MoveCategory      string   `json:"move_category"`
	Notes             []string `json:"notes"`
	TravelTimeMinutes int      `json:"travel_time_minutes"`
	MinimumHours      int      `json:"minimum_hours"`
}

// EstimateRequest is the body of /generate-estimate.
type EstimateRequest struct {
	Rooms          int    `json:"rooms"`
	PickupAddress  string `json:"pickup_address"`
	DropAddress    string `json:"drop_address"`
	StairsElevator bool   `json:"stairs_elevator"`
	MoveDate       string `json:"move_date"`
}

// SlimEstimate is the client-facing projection of an Estimate: rate and
// policy only, no internal anchor price.
type SlimEstimate struct {
	Rooms             int      `json:"rooms"`
	CrewSize          string   `json:"crew_size"`
	HourlyRate        int      `json:"hourly_rate"`
	TravelTimeMinutes int      `json:"travel_time_minutes"`
	MinimumHours      int      `json:"minimum_hours"`
	PickupDropMiles   float64  `json:"pickup_drop_miles"`
	MoveCategory      string   `json:"move_category"`
	Notes             []string `json:"notes"`
}

// Slim projects the estimate into its client-facing form.
func (e Estimate) Slim() SlimEstimate {
	return SlimEstimate{
		Rooms:             e.Rooms,
		CrewSize:          e.CrewSize,
		HourlyRate:        e.HourlyRate,
		TravelTimeMinutes: e.TravelTimeMinutes,
		MinimumHours:      e.MinimumHours,
		PickupDropMiles:   e.PickupDropMiles,
		MoveCategory:      e.MoveCategory,
		Notes:             e.Notes,
	}
}
