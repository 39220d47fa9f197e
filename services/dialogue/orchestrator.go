package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"movebot/database/records"
	"movebot/models"
	"movebot/services/availability"
	"movebot/services/conversation"
	"movebot/services/extraction"
	"movebot/services/intelligence"
	"movebot/services/notify"
	"movebot/services/pricing"
	"movebot/utils"

	"go.uber.org/zap"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 180
)

// Orchestrator runs one conversational turn end to end.
type Orchestrator struct {
	Store        conversation.Store
	Extractor    extraction.Extractor
	LLM          intelligence.Client
	Retry        *intelligence.RetryPolicy
	Cooldown     *intelligence.Cooldown
	Pricing      *pricing.Engine
	Availability *availability.Tracker
	Records      records.Repository
	Notifier     notify.Notifier

	OfficeAddress     string
	CompanyPhone      string
	SendCustomerEmail bool

	// Now is swappable in tests.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// TurnResult is the outcome of a turn, surfaced to the HTTP layer.
type TurnResult struct {
	Reply             string
	Cooldown          bool
	Degraded          bool
	AvailabilityCheck string
	ManagerNotified   bool
}

// HandleTurn processes one user message for a session. Turns for the
// same session are serialized via the store lock; two sessions never
// block each other.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) (TurnResult, error) {
	unlock := o.Store.Lock(sessionID)
	defer unlock()

	if err := o.ensurePreamble(ctx, sessionID); err != nil {
		return TurnResult{}, err
	}
	if err := o.Store.Append(ctx, sessionID, models.Message{Role: models.RoleUser, Content: message}); err != nil {
		return TurnResult{}, err
	}

	if o.Cooldown.Active() {
		return o.degradedTurn(ctx, sessionID, message, true)
	}

	history, err := o.Store.History(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	reply, err := o.Retry.Do(ctx, o.LLM, history,
		intelligence.CompleteOptions{Temperature: chatTemperature, MaxTokens: chatMaxTokens})
	if err != nil {
		o.Cooldown.Trip(err)
		utils.GetLogger().Warn("all chat models failed, entering cooldown",
			zap.String("session", sessionID), zap.Error(err))
		return o.degradedTurn(ctx, sessionID, message, false)
	}

	result := TurnResult{Reply: reply}
	history = append(history, models.Message{Role: models.RoleAssistant, Content: reply})

	o.handleCallRequest(ctx, sessionID, message, history, &result)
	o.runExtractionPipeline(ctx, sessionID, history, &result)

	if err := o.Store.Append(ctx, sessionID, models.Message{Role: models.RoleAssistant, Content: result.Reply}); err != nil {
		return TurnResult{}, err
	}
	return result, nil
}

// EnsureWelcome initializes a fresh session and returns the opening
// message. Called by the /welcome endpoint.
func (o *Orchestrator) EnsureWelcome(ctx context.Context, sessionID string) (string, error) {
	unlock := o.Store.Lock(sessionID)
	defer unlock()
	if err := o.ensurePreamble(ctx, sessionID); err != nil {
		return "", err
	}
	return WelcomeMessage, nil
}

// ensurePreamble seeds the system prompt and welcome turn on first use.
func (o *Orchestrator) ensurePreamble(ctx context.Context, sessionID string) error {
	history, err := o.Store.History(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		return nil
	}
	return o.Store.Append(ctx, sessionID,
		models.Message{Role: models.RoleSystem, Content: SystemPrompt(o.OfficeAddress, o.CompanyPhone)},
		models.Message{Role: models.RoleAssistant, Content: WelcomeMessage},
	)
}

// degradedTurn answers without the language backend: a quote when the
// quick grammar matches, otherwise a canned hold message. cooldownGate
// marks turns rejected before any model attempt; total-failure turns
// additionally attempt the extraction side effects, so a session that
// already holds a complete booking still gets submitted.
func (o *Orchestrator) degradedTurn(ctx context.Context, sessionID, message string, cooldownGate bool) (TurnResult, error) {
	result := TurnResult{Cooldown: cooldownGate, Degraded: !cooldownGate}

	if q, ok := ParseQuickMove(message); ok {
		est, err := o.Pricing.Estimate(ctx, q.Rooms, q.Pickup, q.Drop, q.Stairs, "")
		if err == nil {
			result.Reply = quickQuoteReply(est)
		}
	}
	if result.Reply == "" {
		result.Reply = fmt.Sprintf("Thanks for your patience — our assistant is briefly catching up. "+
			"You can tell me your move in one line (for example, \"2 bedroom move from 123 Main St to 456 Oak Ave\") "+
			"and I'll quote your rate right away, or call us at %s.", o.CompanyPhone)
	}

	if DetectCallIntent(message) {
		history, _ := o.Store.History(ctx, sessionID)
		o.handleCallRequest(ctx, sessionID, message, history, &result)
	}

	if !cooldownGate {
		if history, err := o.Store.History(ctx, sessionID); err == nil {
			o.runExtractionPipeline(ctx, sessionID, history, &result)
		}
	}

	if err := o.Store.Append(ctx, sessionID, models.Message{Role: models.RoleAssistant, Content: result.Reply}); err != nil {
		return TurnResult{}, err
	}
	return result, nil
}

func quickQuoteReply(est models.Estimate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's your rate: %s at $%d/hr, with a %d-hour minimum plus %d minutes travel time.",
		est.CrewSize, est.HourlyRate, est.MinimumHours, est.TravelTimeMinutes)
	if est.MoveCategory == models.MoveLongDistance {
		sb.WriteString(" Your move is long-distance, so packing materials are free and a manager will follow up with your final quote.")
	}
	sb.WriteString(" To book, I'll just need your name, phone, email, and preferred date.")
	return sb.String()
}

// handleCallRequest flips the session into the call-back flow and
// notifies the manager exactly once, as soon as a phone number is known.
func (o *Orchestrator) handleCallRequest(ctx context.Context, sessionID, message string, history []models.Message, result *TurnResult) {
	meta, err := o.Store.Meta(ctx, sessionID)
	if err != nil {
		utils.GetLogger().Warn("meta read failed", zap.String("session", sessionID), zap.Error(err))
		return
	}

	if DetectCallIntent(message) {
		meta.CallRequested = true
		if timing := ParseCallTiming(message, o.now()); meta.CallTiming == "" || timing != "as soon as possible" {
			meta.CallTiming = timing
		}
	}
	if !meta.CallRequested || meta.CallNotified {
		_ = o.Store.SetMeta(ctx, sessionID, meta)
		return
	}

	rec := o.Extractor.Extract(ctx, history)
	if rec.Phone == "" {
		rec = extraction.Fallback(history)
	}
	if rec.Phone == "" {
		_ = o.Store.SetMeta(ctx, sessionID, meta)
		result.Reply = "Absolutely — I can have someone from our team call you. What's your name and the best number to reach you?"
		return
	}

	timing := meta.CallTiming
	if timing == "" {
		timing = "as soon as possible"
	}
	req := models.CallRequest{Name: rec.Name, Phone: rec.Phone, Timing: timing}
	if err := o.Notifier.CallRequestAlert(ctx, req); err == nil {
		meta.CallNotified = true
		result.ManagerNotified = true
		if rec.Name != "" {
			result.Reply = fmt.Sprintf("Got it, %s — someone from our team will call you at %s %s.", rec.Name, rec.Phone, timing)
		} else {
			result.Reply = fmt.Sprintf("Got it — someone from our team will call you at %s %s.", rec.Phone, timing)
		}
	}
	_ = o.Store.SetMeta(ctx, sessionID, meta)
}

// runExtractionPipeline re-extracts the booking record and fires the
// submission or long-distance handoff side effects when their gates open.
func (o *Orchestrator) runExtractionPipeline(ctx context.Context, sessionID string, history []models.Message, result *TurnResult) {
	rec := o.Extractor.Extract(ctx, history)

	switch {
	case rec.ReadyToSubmit:
		o.submitBooking(ctx, rec, result)
	case rec.ReadyForLongDistance:
		meta, err := o.Store.Meta(ctx, sessionID)
		if err != nil {
			return
		}
		if meta.LongDistanceNotified {
			return
		}
		if err := o.Notifier.LongDistanceAlert(ctx, rec); err != nil {
			utils.GetLogger().Warn("long-distance alert failed", zap.Error(err))
			return
		}
		meta.LongDistanceNotified = true
		_ = o.Store.SetMeta(ctx, sessionID, meta)
		result.ManagerNotified = true
	}
}

// submitBooking checks capacity, enriches the record with an estimate,
// persists it, and sends the alerts. A full date replaces the reply with
// alternate suggestions instead of booking.
func (o *Orchestrator) submitBooking(ctx context.Context, rec models.BookingRecord, result *TurnResult) {
	booked := o.Availability.CountOnDate(ctx, rec.MoveDate)
	if booked >= o.Availability.DailyCapacity {
		result.AvailabilityCheck = "full"
		alternates := o.Availability.SuggestAlternates(ctx, rec.MoveDate, 3)
		if len(alternates) > 0 {
			result.Reply = fmt.Sprintf("I'm sorry — %s is fully booked. We do have openings on %s. Would any of those work for you?",
				rec.MoveDate, strings.Join(alternates, ", "))
		} else {
			result.Reply = fmt.Sprintf("I'm sorry — %s is fully booked and the next two weeks are tight. Please call us at %s and we'll find you a slot.",
				rec.MoveDate, o.CompanyPhone)
		}
		return
	}
	result.AvailabilityCheck = "available"

	EnrichRecord(ctx, o.Pricing, &rec)

	bookingID, err := o.Records.SaveBooking(ctx, rec)
	if err != nil {
		utils.GetLogger().Error("booking save failed", zap.Error(err))
		result.Reply = fmt.Sprintf("I have all your details, but our booking system hiccupped saving them. Please call us at %s to lock it in — sorry about that!",
			o.CompanyPhone)
		return
	}

	if err := o.Notifier.BookingAlert(ctx, rec, bookingID); err == nil {
		result.ManagerNotified = true
	}
	if o.SendCustomerEmail {
		if err := o.Notifier.CustomerConfirmation(ctx, rec, bookingID); err != nil {
			utils.GetLogger().Warn("customer confirmation failed", zap.Error(err))
		}
	}

	result.Reply = fmt.Sprintf("You're all set, %s! Your move on %s (%s) is booked — confirmation %s. "+
		"We'll reach out the day before to confirm your arrival window.",
		rec.Name, rec.MoveDate, rec.TimePreference, bookingID)
}

var roomsDigitRe = regexp.MustCompile(`\d+`)

// EnrichRecord attaches crew, rate, and distance to the record before
// it is persisted. Estimate failures are logged and skipped; the booking
// still goes through.
func EnrichRecord(ctx context.Context, eng *pricing.Engine, rec *models.BookingRecord) {
	if !rec.AddressesComplete() {
		return
	}
	rooms := 2
	if m := roomsDigitRe.FindString(rec.HomeSize); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			rooms = n
		}
	} else if strings.Contains(strings.ToLower(rec.HomeSize), "studio") {
		rooms = 0
	}
	stairs := hasStairs(rec.StairsElevator)

	est, err := eng.Estimate(ctx, rooms, rec.PickupAddress, rec.DropAddress, stairs, rec.MoveDate)
	if err != nil {
		utils.GetLogger().Warn("estimate enrichment failed", zap.Error(err))
		return
	}
	rec.CrewSize = est.CrewSize
	rec.EstimatedCost = fmt.Sprintf("$%d/hr", est.HourlyRate)
	rec.DistanceMiles = est.PickupDropMiles
	if rec.MoveType == "" {
		rec.MoveType = est.MoveCategory
	}
}

func hasStairs(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" || lower == "no" || lower == "none" || lower == "n/a" ||
		strings.Contains(lower, "no stairs") || strings.Contains(lower, "ground") {
		return false
	}
	return true
}

// ResetSession drops all state for a session.
func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) error {
	unlock := o.Store.Lock(sessionID)
	defer unlock()
	return o.Store.Reset(ctx, sessionID)
}
