package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"movebot/models"
)

func TestAppendAndHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Append(ctx, "s1",
		models.Message{Role: models.RoleUser, Content: "hello"},
		models.Message{Role: models.RoleAssistant, Content: "hi there"},
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Content != "hello" || history[1].Content != "hi there" {
		t.Errorf("unexpected history: %+v", history)
	}

	// Sessions are independent.
	other, _ := store.History(ctx, "s2")
	if len(other) != 0 {
		t.Errorf("fresh session has %d messages, want 0", len(other))
	}
}

func TestTrimKeepsPreambleAndRecent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Append(ctx, "s1", models.Message{Role: models.RoleSystem, Content: "preamble"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	for i := 0; i < 30; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		if err := store.Append(ctx, "s1", models.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	history, _ := store.History(ctx, "s1")
	if len(history) != KeepRecent+1 {
		t.Fatalf("history length = %d, want %d", len(history), KeepRecent+1)
	}
	if history[0].Role != models.RoleSystem || history[0].Content != "preamble" {
		t.Errorf("preamble not preserved: %+v", history[0])
	}
	if history[len(history)-1].Content != "turn 29" {
		t.Errorf("last message = %q, want %q", history[len(history)-1].Content, "turn 29")
	}
	if history[1].Content != fmt.Sprintf("turn %d", 30-KeepRecent) {
		t.Errorf("oldest kept turn = %q, want %q", history[1].Content, fmt.Sprintf("turn %d", 30-KeepRecent))
	}
}

func TestTrimWithoutPreamble(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 20; i++ {
		if err := store.Append(ctx, "s1", models.Message{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	history, _ := store.History(ctx, "s1")
	if len(history) != KeepRecent {
		t.Fatalf("history length = %d, want %d", len(history), KeepRecent)
	}
	if history[0].Role == models.RoleSystem {
		t.Error("no system message was appended but one survived the trim")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	meta, _ := store.Meta(ctx, "s1")
	if meta.CallRequested || meta.LongDistanceNotified {
		t.Errorf("fresh meta not zero: %+v", meta)
	}

	meta.CallRequested = true
	meta.CallTiming = "later today"
	if err := store.SetMeta(ctx, "s1", meta); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}

	got, _ := store.Meta(ctx, "s1")
	if !got.CallRequested || got.CallTiming != "later today" {
		t.Errorf("meta after SetMeta = %+v", got)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Append(ctx, "s1", models.Message{Role: models.RoleUser, Content: "hello"})
	meta := models.SessionMeta{CallRequested: true}
	_ = store.SetMeta(ctx, "s1", meta)

	if err := store.Reset(ctx, "s1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	history, _ := store.History(ctx, "s1")
	if len(history) != 0 {
		t.Errorf("history after reset has %d messages", len(history))
	}
	got, _ := store.Meta(ctx, "s1")
	if got.CallRequested {
		t.Error("meta survived reset")
	}
}

func TestLockSerializesAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			unlock := store.Lock("s1")
			defer unlock()
			_ = store.Append(ctx, "s1", models.Message{Role: models.RoleUser, Content: fmt.Sprintf("m%d", n)})
		}(i)
	}
	wg.Wait()

	history, _ := store.History(ctx, "s1")
	if len(history) != KeepRecent {
		t.Errorf("history length = %d, want %d after trim", len(history), KeepRecent)
	}
}
