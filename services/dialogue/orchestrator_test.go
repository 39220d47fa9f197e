package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"movebot/models"
	"movebot/services/availability"
	"movebot/services/conversation"
	"movebot/services/intelligence"
	"movebot/services/pricing"
)

type scriptedClient struct {
	reply string
	err   error
	calls int
}

func (c *scriptedClient) Complete(context.Context, string, []models.Message, intelligence.CompleteOptions) (string, error) {
	c.calls++
	return c.reply, c.err
}

type scriptedExtractor struct {
	rec models.BookingRecord
}

func (e *scriptedExtractor) Extract(context.Context, []models.Message) models.BookingRecord {
	return e.rec
}

type countingNotifier struct {
	bookings     int
	longDistance int
	calls        int
	confirms     int
}

func (n *countingNotifier) BookingAlert(context.Context, models.BookingRecord, string) error {
	n.bookings++
	return nil
}

func (n *countingNotifier) LongDistanceAlert(context.Context, models.BookingRecord) error {
	n.longDistance++
	return nil
}

func (n *countingNotifier) CallRequestAlert(context.Context, models.CallRequest) error {
	n.calls++
	return nil
}

func (n *countingNotifier) CustomerConfirmation(context.Context, models.BookingRecord, string) error {
	n.confirms++
	return nil
}

type memRepo struct {
	dates []string
	saved []models.BookingRecord
}

func (r *memRepo) SaveBooking(_ context.Context, rec models.BookingRecord) (string, error) {
	r.saved = append(r.saved, rec)
	return "BOOK-20251112120000", nil
}

func (r *memRepo) BookingDates(context.Context) ([]string, error)      { return r.dates, nil }
func (r *memRepo) BookingTimestamps(context.Context) ([]string, error) { return nil, nil }

type flatDistance struct{ miles float64 }

func (d *flatDistance) OneWayMiles(context.Context, string, string) (float64, error) {
	return d.miles, nil
}

func (d *flatDistance) RoundTripMiles(context.Context, string, string, string) (float64, error) {
	return d.miles * 2.5, nil
}

func newTestOrchestrator(client intelligence.Client, ex *scriptedExtractor, repo *memRepo, notifier *countingNotifier) *Orchestrator {
	tracker := availability.NewTracker(repo, 3)
	return &Orchestrator{
		Store:     conversation.NewMemoryStore(),
		Extractor: ex,
		LLM:       client,
		Retry:     intelligence.NewRetryPolicy([]string{"test-model"}),
		Cooldown:  intelligence.NewCooldown(),
		Pricing: &pricing.Engine{
			Distance:      &flatDistance{miles: 12.4},
			Availability:  tracker,
			OfficeAddress: "office",
		},
		Availability:  tracker,
		Records:       repo,
		Notifier:      notifier,
		OfficeAddress: "2800 Rolido Dr Apt 238, Houston, TX 77063",
		CompanyPhone:  "(281) 743-4503",
		Now:           func() time.Time { return time.Date(2025, 11, 12, 12, 0, 0, 0, time.UTC) },
	}
}

func TestHandleTurnNormalReply(t *testing.T) {
	client := &scriptedClient{reply: "Happy to help! What's your pickup address?"}
	o := newTestOrchestrator(client, &scriptedExtractor{}, &memRepo{}, &countingNotifier{})

	result, err := o.HandleTurn(context.Background(), "s1", "I want to move")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.Reply != client.reply {
		t.Errorf("reply = %q", result.Reply)
	}
	if result.Cooldown || result.Degraded {
		t.Errorf("unexpected status flags: %+v", result)
	}
	if client.calls != 1 {
		t.Errorf("client calls = %d, want 1", client.calls)
	}

	history, _ := o.Store.History(context.Background(), "s1")
	// preamble + welcome + user turn + assistant reply
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[0].Role != models.RoleSystem {
		t.Error("first message is not the system preamble")
	}
	if history[len(history)-1].Content != client.reply {
		t.Error("assistant reply not appended")
	}
}

func TestCooldownGateSkipsBackend(t *testing.T) {
	client := &scriptedClient{reply: "should never be used"}
	o := newTestOrchestrator(client, &scriptedExtractor{}, &memRepo{}, &countingNotifier{})
	o.Cooldown.Trip(errors.New("429 rate limit"))

	result, err := o.HandleTurn(context.Background(), "s1", "3 bedroom move from 123 Main St to 456 Oak Ave")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if client.calls != 0 {
		t.Errorf("backend called %d times during cooldown, want 0", client.calls)
	}
	if !result.Cooldown {
		t.Error("cooldown flag not set")
	}
	if !strings.Contains(result.Reply, "$150/hr") {
		t.Errorf("degraded quote missing rate: %q", result.Reply)
	}
}

func TestBackendFailureTripsCooldown(t *testing.T) {
	client := &scriptedClient{err: errors.New("quota exceeded: resource exhausted")}
	o := newTestOrchestrator(client, &scriptedExtractor{}, &memRepo{}, &countingNotifier{})

	result, err := o.HandleTurn(context.Background(), "s1", "hello there")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !result.Degraded || result.Cooldown {
		t.Errorf("status flags = %+v, want degraded without cooldown", result)
	}
	if result.Reply == "" {
		t.Error("degraded turn produced empty reply")
	}
	if !o.Cooldown.Active() {
		t.Error("cooldown not tripped after total failure")
	}

	// The next turn must not touch the backend.
	calls := client.calls
	if _, err := o.HandleTurn(context.Background(), "s1", "still there?"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if client.calls != calls {
		t.Errorf("backend called during active cooldown")
	}
}

func TestLongDistanceHandoffFiresOnce(t *testing.T) {
	notifier := &countingNotifier{}
	ex := &scriptedExtractor{rec: models.BookingRecord{
		Name:                 "Jane",
		Phone:                "7135550142",
		Email:                "jane@example.com",
		PickupAddress:        "Houston, TX",
		DropAddress:          "Dallas, TX",
		DistanceMiles:        239,
		MoveType:             models.MoveLongDistance,
		ReadyForLongDistance: true,
	}}
	o := newTestOrchestrator(&scriptedClient{reply: "A manager will reach out!"}, ex, &memRepo{}, notifier)

	first, err := o.HandleTurn(context.Background(), "s1", "moving to dallas")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !first.ManagerNotified {
		t.Error("first qualifying turn did not notify the manager")
	}

	second, err := o.HandleTurn(context.Background(), "s1", "anything else you need?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if second.ManagerNotified {
		t.Error("second turn re-reported a manager notification")
	}
	if notifier.longDistance != 1 {
		t.Errorf("long-distance alerts = %d, want exactly 1", notifier.longDistance)
	}
}

func TestReadyToSubmitBooksAndConfirms(t *testing.T) {
	notifier := &countingNotifier{}
	repo := &memRepo{}
	ex := &scriptedExtractor{rec: models.BookingRecord{
		Name:           "Jane Smith",
		Phone:          "7135550142",
		Email:          "jane@example.com",
		PickupAddress:  "123 Main St",
		DropAddress:    "456 Oak Ave",
		HomeSize:       "3 bedroom",
		MoveDate:       "2025-11-20",
		TimePreference: "morning",
		ReadyToSubmit:  true,
	}}
	o := newTestOrchestrator(&scriptedClient{reply: "Let me book that."}, ex, repo, notifier)

	result, err := o.HandleTurn(context.Background(), "s1", "yes, book it")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.AvailabilityCheck != "available" {
		t.Errorf("availability check = %q, want available", result.AvailabilityCheck)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved bookings = %d, want 1", len(repo.saved))
	}
	saved := repo.saved[0]
	if saved.CrewSize != pricing.CrewThree || saved.EstimatedCost != "$150/hr" {
		t.Errorf("enrichment missing: crew %q, cost %q", saved.CrewSize, saved.EstimatedCost)
	}
	if notifier.bookings != 1 {
		t.Errorf("booking alerts = %d, want 1", notifier.bookings)
	}
	if notifier.confirms != 0 {
		t.Errorf("customer confirmation sent with the flag disabled")
	}
	if !result.ManagerNotified {
		t.Error("manager notification not reported")
	}
	if !strings.Contains(result.Reply, "BOOK-20251112120000") {
		t.Errorf("confirmation reply missing booking id: %q", result.Reply)
	}
}

func TestFullDateSuggestsAlternates(t *testing.T) {
	repo := &memRepo{dates: []string{"2025-11-20", "2025-11-20", "2025-11-20"}}
	ex := &scriptedExtractor{rec: models.BookingRecord{
		Name:           "Jane",
		Phone:          "7135550142",
		Email:          "jane@example.com",
		PickupAddress:  "a",
		DropAddress:    "b",
		MoveDate:       "2025-11-20",
		TimePreference: "morning",
		ReadyToSubmit:  true,
	}}
	notifier := &countingNotifier{}
	o := newTestOrchestrator(&scriptedClient{reply: "Booking now."}, ex, repo, notifier)

	result, err := o.HandleTurn(context.Background(), "s1", "book it")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.AvailabilityCheck != "full" {
		t.Errorf("availability check = %q, want full", result.AvailabilityCheck)
	}
	if len(repo.saved) != 0 {
		t.Errorf("booking persisted on a full date")
	}
	if notifier.bookings != 0 {
		t.Errorf("booking alert fired on a full date")
	}
	if !strings.Contains(result.Reply, "2025-11-21") {
		t.Errorf("reply missing alternate dates: %q", result.Reply)
	}
}

func TestCallRequestNotifiesOnce(t *testing.T) {
	notifier := &countingNotifier{}
	ex := &scriptedExtractor{rec: models.BookingRecord{
		Name:  "Jane",
		Phone: "7135550142",
	}}
	o := newTestOrchestrator(&scriptedClient{reply: "Sure, we'll call you."}, ex, &memRepo{}, notifier)

	first, err := o.HandleTurn(context.Background(), "s1", "please call me later today")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !first.ManagerNotified {
		t.Error("call request did not notify the manager")
	}
	if notifier.calls != 1 {
		t.Fatalf("call alerts = %d, want 1", notifier.calls)
	}
	if !strings.Contains(first.Reply, "call you at 7135550142") {
		t.Errorf("reply does not confirm the call-back: %q", first.Reply)
	}

	if _, err := o.HandleTurn(context.Background(), "s1", "thanks!"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if notifier.calls != 1 {
		t.Errorf("call alerts after second turn = %d, want still 1", notifier.calls)
	}
}

func TestDegradedTurnSubmitsReadyBooking(t *testing.T) {
	notifier := &countingNotifier{}
	repo := &memRepo{}
	ex := &scriptedExtractor{rec: models.BookingRecord{
		Name:           "Jane Smith",
		Phone:          "7135550142",
		Email:          "jane@example.com",
		PickupAddress:  "123 Main St",
		DropAddress:    "456 Oak Ave",
		HomeSize:       "2 bedroom",
		MoveDate:       "2025-11-20",
		TimePreference: "morning",
		ReadyToSubmit:  true,
	}}
	client := &scriptedClient{err: errors.New("429 rate limit")}
	o := newTestOrchestrator(client, ex, repo, notifier)

	result, err := o.HandleTurn(context.Background(), "s1", "yes, go ahead and book it")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !result.Degraded || result.Cooldown {
		t.Errorf("status flags = %+v, want degraded without cooldown", result)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved bookings = %d, want 1: a complete record must submit even when every model fails", len(repo.saved))
	}
	if notifier.bookings != 1 {
		t.Errorf("booking alerts = %d, want 1", notifier.bookings)
	}
	if !strings.Contains(result.Reply, "BOOK-20251112120000") {
		t.Errorf("reply missing booking confirmation: %q", result.Reply)
	}
}

func TestCallRequestAsksForContact(t *testing.T) {
	notifier := &countingNotifier{}
	o := newTestOrchestrator(&scriptedClient{}, &scriptedExtractor{}, &memRepo{}, notifier)
	o.Cooldown.Trip(errors.New("429 rate limit"))

	result, err := o.HandleTurn(context.Background(), "s1", "please call me")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if notifier.calls != 0 {
		t.Errorf("call alert fired without a phone number")
	}
	if !strings.Contains(result.Reply, "number") {
		t.Errorf("reply does not ask for a phone number: %q", result.Reply)
	}

	meta, _ := o.Store.Meta(context.Background(), "s1")
	if !meta.CallRequested || meta.CallNotified {
		t.Errorf("meta = %+v, want pending call request", meta)
	}
}

func TestEnsureWelcome(t *testing.T) {
	o := newTestOrchestrator(&scriptedClient{}, &scriptedExtractor{}, &memRepo{}, &countingNotifier{})

	msg, err := o.EnsureWelcome(context.Background(), "s1")
	if err != nil {
		t.Fatalf("EnsureWelcome: %v", err)
	}
	if msg != WelcomeMessage {
		t.Errorf("welcome = %q", msg)
	}

	history, _ := o.Store.History(context.Background(), "s1")
	if len(history) != 2 {
		t.Fatalf("history length = %d, want preamble + welcome", len(history))
	}

	// Idempotent: a second welcome does not duplicate the preamble.
	if _, err := o.EnsureWelcome(context.Background(), "s1"); err != nil {
		t.Fatalf("EnsureWelcome: %v", err)
	}
	history, _ = o.Store.History(context.Background(), "s1")
	if len(history) != 2 {
		t.Errorf("history length after repeat welcome = %d, want 2", len(history))
	}
}

func TestResetSession(t *testing.T) {
	o := newTestOrchestrator(&scriptedClient{reply: "hello"}, &scriptedExtractor{}, &memRepo{}, &countingNotifier{})

	if _, err := o.HandleTurn(context.Background(), "s1", "hi"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if err := o.ResetSession(context.Background(), "s1"); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	history, _ := o.Store.History(context.Background(), "s1")
	if len(history) != 0 {
		t.Errorf("history after reset has %d messages", len(history))
	}
}
