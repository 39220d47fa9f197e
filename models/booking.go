package models

// Move categories derived from the pickup→drop distance.
const (
	MoveLocal        = "local"
	MoveLongDistance = "long-distance"
)

// FieldTBD is the placeholder the extraction backend may emit for a field
// it considers undecided; readiness treats it as absent.
const FieldTBD = "TBD"

// BookingRecord is the structured extraction target. It is recomputed
// fresh from the full session history on every turn, never mutated
// incrementally, so corrections in later user messages win.
type BookingRecord struct {
	Name           string  `json:"name,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Email          string  `json:"email,omitempty"`
	PickupAddress  string  `json:"pickup_address,omitempty"`
	DropAddress    string  `json:"drop_address,omitempty"`
	HomeSize       string  `json:"home_size,omitempty"`
	StairsElevator string  `json:"stairs_elevator,omitempty"`
	MoveDate       string  `json:"move_date,omitempty"`
	TimePreference string  `json:"time_preference,omitempty"`
	MoveType       string  `json:"move_type,omitempty"`
	EstimatedCost  string  `json:"estimated_cost,omitempty"`
	SpecialItems   string  `json:"special_items,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	CrewSize       string  `json:"crew_size,omitempty"`
	DistanceMiles  float64 `json:"distance_miles,omitempty"`

	// ReadyToSubmit is true iff every field required for a full booking
	// is present. ReadyForLongDistance gates the manager handoff and is
	// independent of ReadyToSubmit (a handoff needs no date or time).
	ReadyToSubmit        bool `json:"ready_to_submit"`
	ReadyForLongDistance bool `json:"ready_for_long_distance"`
}

// submitFields are the fields required before a booking may be persisted.
var submitFields = []string{"name", "phone", "email", "pickup_address", "drop_address", "move_date", "time_preference"}

func (b *BookingRecord) field(name string) string {
	switch name {
	case "name":
		return b.Name
	case "phone":
		return b.Phone
	case "email":
		return b.Email
	case "pickup_address":
		return b.PickupAddress
	case "drop_address":
		return b.DropAddress
	case "home_size":
		return b.HomeSize
	case "stairs_elevator":
		return b.StairsElevator
	case "move_date":
		return b.MoveDate
	case "time_preference":
		return b.TimePreference
	}
	return ""
}

// MissingForSubmit lists the required fields that are absent or still the
// TBD placeholder.
func (b *BookingRecord) MissingForSubmit() []string {
	var missing []string
	for _, f := range submitFields {
		if v := b.field(f); v == "" || v == FieldTBD {
			missing = append(missing, f)
		}
	}
	return missing
}

// SubmitReady reports whether all contact and logistics fields are present.
func (b *BookingRecord) SubmitReady() bool {
	return len(b.MissingForSubmit()) == 0
}

// ContactComplete reports whether name, phone and email are all present,
// the contact half of the long-distance handoff gate.
func (b *BookingRecord) ContactComplete() bool {
	return b.Name != "" && b.Phone != "" && b.Email != ""
}

// AddressesComplete reports whether both addresses are present.
func (b *BookingRecord) AddressesComplete() bool {
	return b.PickupAddress != "" && b.DropAddress != ""
}

// CallRequest is the body of a direct call-back request.
type CallRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Timing string `json:"timing"`
}
