// Package extraction turns a raw conversation history into a structured
// booking record. Extraction is stateless per turn: the record is rebuilt
// from the full history every time, so later corrections always win.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"movebot/models"
	"movebot/services/distance"
	"movebot/services/intelligence"
	"movebot/utils"

	"go.uber.org/zap"
)

const (
	extractTimeout     = 15 * time.Second
	extractTemperature = 0.1
	extractMaxTokens   = 500
)

// Extractor produces a booking record from a session history. It never
// errors: when the backend is unreachable or its output is unusable, it
// degrades to a conservative record that will not trigger submission.
type Extractor interface {
	Extract(ctx context.Context, history []models.Message) models.BookingRecord
}

// AIExtractor asks the language backend to fill a fixed JSON schema,
// then normalizes and post-processes the result.
type AIExtractor struct {
	Client   intelligence.Client
	Model    string
	Distance distance.Service
}

func NewAIExtractor(client intelligence.Client, model string, dist distance.Service) *AIExtractor {
	return &AIExtractor{Client: client, Model: model, Distance: dist}
}

// wireRecord is the schema the backend is asked to emit. Fields arrive
// as strings except distance, which some models emit as a bare number.
type wireRecord struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	PickupAddress  string         `json:"pickup_address"`
	DropAddress    string         `json:"drop_address"`
	HomeSize       string         `json:"home_size"`
	StairsElevator string         `json:"stairs_elevator"`
	MoveDate       string         `json:"move_date"`
	TimePreference string         `json:"time_preference"`
	MoveType       string         `json:"move_type"`
	EstimatedCost  string         `json:"estimated_cost"`
	SpecialItems   string         `json:"special_items"`
	Notes          string         `json:"notes"`
	CrewSize       string         `json:"crew_size"`
	DistanceMiles  stringOrNumber `json:"distance_miles"`
}

// stringOrNumber tolerates both "12.4" and 12.4 on the wire.
type stringOrNumber float64

func (n *stringOrNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" || s == models.FieldTBD {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = stringOrNumber(v)
	return nil
}

const extractPrompt = `Extract the booking details below from a moving company chat transcript.
Return ONLY a JSON object with exactly these keys (use "null" for anything not mentioned):
{"name":"null","phone":"null","email":"null","pickup_address":"null","drop_address":"null","home_size":"null","stairs_elevator":"null","move_date":"null","time_preference":"null","move_type":"null","estimated_cost":"null","special_items":"null","notes":"null","crew_size":"null","distance_miles":"null"}
Rules:
- move_date must be YYYY-MM-DD. Resolve relative dates against today's date: %s.
- phone: digits and punctuation as given by the customer.
- home_size: the bedroom count or home description as stated.
- If the customer corrected a detail later in the chat, use the corrected value.

Transcript:
%s`

func (e *AIExtractor) Extract(ctx context.Context, history []models.Message) models.BookingRecord {
	if e.Client == nil {
		return Fallback(history)
	}

	transcript := Transcript(history)
	if transcript == "" {
		return models.BookingRecord{}
	}

	prompt := fmt.Sprintf(extractPrompt, time.Now().Format("2006-01-02"), transcript)
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	out, err := e.Client.Complete(ctx, e.Model,
		[]models.Message{{Role: models.RoleUser, Content: prompt}},
		intelligence.CompleteOptions{Temperature: extractTemperature, MaxTokens: extractMaxTokens})
	if err != nil {
		utils.GetLogger().Warn("extraction backend failed, using regex fallback", zap.Error(err))
		return Fallback(history)
	}

	var wire wireRecord
	if err := json.Unmarshal([]byte(stripFences(out)), &wire); err != nil {
		utils.GetLogger().Warn("extraction output not decodable", zap.Error(err))
		return models.BookingRecord{}
	}

	rec := models.BookingRecord{
		Name:           clean(wire.Name),
		Phone:          clean(wire.Phone),
		Email:          clean(wire.Email),
		PickupAddress:  clean(wire.PickupAddress),
		DropAddress:    clean(wire.DropAddress),
		HomeSize:       clean(wire.HomeSize),
		StairsElevator: clean(wire.StairsElevator),
		MoveDate:       clean(wire.MoveDate),
		TimePreference: clean(wire.TimePreference),
		MoveType:       clean(wire.MoveType),
		EstimatedCost:  clean(wire.EstimatedCost),
		SpecialItems:   clean(wire.SpecialItems),
		Notes:          clean(wire.Notes),
		CrewSize:       clean(wire.CrewSize),
		DistanceMiles:  float64(wire.DistanceMiles),
	}
	if rec.SpecialItems == "" {
		rec.SpecialItems = "None"
	}
	e.postProcess(ctx, &rec)
	return rec
}

// postProcess resolves the distance from the routing service whenever
// both addresses are known (the model's own figure is untrusted; the
// memo cache makes the re-query cheap), derives the move category, and
// computes the readiness flags.
func (e *AIExtractor) postProcess(ctx context.Context, rec *models.BookingRecord) {
	if rec.AddressesComplete() && e.Distance != nil {
		if miles, err := e.Distance.OneWayMiles(ctx, rec.PickupAddress, rec.DropAddress); err == nil {
			rec.DistanceMiles = miles
		}
	}
	if rec.DistanceMiles >= 50 {
		rec.MoveType = models.MoveLongDistance
		rec.ReadyForLongDistance = rec.ContactComplete() && rec.AddressesComplete()
	} else if rec.MoveType == "" && rec.DistanceMiles > 0 {
		rec.MoveType = models.MoveLocal
	}
	rec.ReadyToSubmit = rec.SubmitReady()
}

// Transcript renders user and assistant turns, skipping the preamble.
func Transcript(history []models.Message) string {
	var sb strings.Builder
	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			sb.WriteString("Customer: ")
		case models.RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			continue
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, that chat models habitually add around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// clean maps the "null" sentinel and whitespace-only values to absent.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none provided") {
		return ""
	}
	return s
}
