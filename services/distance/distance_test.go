package distance

import (
	"context"
	"errors"
	"testing"
)

func TestCacheKeyNormalization(t *testing.T) {
	tests := []struct {
		name string
		a1   []string
		a2   []string
		same bool
	}{
		{"case and whitespace", []string{" 123 Main St ", "456 Oak Ave"}, []string{"123 main st", "456 OAK AVE "}, true},
		{"different destinations", []string{"123 Main St", "456 Oak Ave"}, []string{"123 Main St", "789 Pine Rd"}, false},
		{"swapped direction", []string{"a", "b"}, []string{"b", "a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1 := cacheKey(tt.a1[0], tt.a1[1])
			k2 := cacheKey(tt.a2[0], tt.a2[1])
			if (k1 == k2) != tt.same {
				t.Errorf("cacheKey(%v) vs cacheKey(%v): same=%v, want %v", tt.a1, tt.a2, k1 == k2, tt.same)
			}
		})
	}
}

func TestParseMiles(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"12.4 mi", 12.4, true},
		{"1,024 mi", 1024, true},
		{"212 mi", 212, true},
		{"0.3 mi", 0.3, true},
		{"", 0, false},
		{"unavailable", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMiles(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseMiles(%q) = (%v, %v), want (%v, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

// routeFake serves scripted one-way legs and counts lookups.
type routeFake struct {
	legs  map[string]float64
	calls int
}

func (f *routeFake) OneWayMiles(_ context.Context, origin, destination string) (float64, error) {
	f.calls++
	miles, ok := f.legs[origin+"|"+destination]
	if !ok {
		return 0, ErrUnavailable
	}
	return miles, nil
}

func (f *routeFake) RoundTripMiles(ctx context.Context, base, pickup, drop string) (float64, error) {
	return RoundTrip(ctx, f, base, pickup, drop)
}

func TestRoundTripSumsThreeLegs(t *testing.T) {
	fake := &routeFake{legs: map[string]float64{
		"office|pickup": 5.2,
		"pickup|drop":   12.4,
		"drop|office":   9.1,
	}}
	got, err := RoundTrip(context.Background(), fake, "office", "pickup", "drop")
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}
	if got != 26.7 {
		t.Errorf("RoundTrip = %v, want 26.7", got)
	}
	if fake.calls != 3 {
		t.Errorf("lookups = %d, want 3", fake.calls)
	}
}

func TestRoundTripPropagatesFailure(t *testing.T) {
	fake := &routeFake{legs: map[string]float64{
		"office|pickup": 5.2,
	}}
	_, err := RoundTrip(context.Background(), fake, "office", "pickup", "drop")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestRoundTripRounding(t *testing.T) {
	fake := &routeFake{legs: map[string]float64{
		"office|pickup": 1.11,
		"pickup|drop":   2.22,
		"drop|office":   3.33,
	}}
	got, err := RoundTrip(context.Background(), fake, "office", "pickup", "drop")
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}
	// 6.66 rounds to one decimal place.
	if got != 6.7 {
		t.Errorf("RoundTrip = %v, want 6.7", got)
	}
}
