package dialogue

import (
	"regexp"
	"strconv"
	"strings"
)

// QuickMove is what the degraded-mode grammar can recover from a single
// message: enough to produce a rate quote without the language backend.
type QuickMove struct {
	Pickup string
	Drop   string
	Rooms  int
	Stairs bool
	// HasStairsInfo distinguishes "no stairs" from "not mentioned".
	HasStairsInfo bool
}

var (
	fromToRe   = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)(?:[.,;]|$)`)
	bedroomsRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:bed(?:room)?s?|br)\b`)
	studioRe   = regexp.MustCompile(`(?i)\bstudio\b`)
	noStairsRe = regexp.MustCompile(`(?i)\bno\s+stairs\b|\bground\s+floor\b|\bfirst\s+floor\b`)
	stairsRe   = regexp.MustCompile(`(?i)\bstairs?\b|\belevator\b|\bwalk[- ]?up\b|\b(?:2nd|3rd|\d+th)\s+floor\b`)
)

// ParseQuickMove recognizes the "N bedroom move from X to Y" family of
// messages. ok is false when either address half is missing.
func ParseQuickMove(message string) (QuickMove, bool) {
	var q QuickMove

	m := fromToRe.FindStringSubmatch(message)
	if m == nil {
		return q, false
	}
	q.Pickup = strings.TrimSpace(m[1])
	q.Drop = strings.TrimSpace(m[2])
	if q.Pickup == "" || q.Drop == "" {
		return QuickMove{}, false
	}

	if b := bedroomsRe.FindStringSubmatch(message); b != nil {
		q.Rooms, _ = strconv.Atoi(b[1])
	} else if studioRe.MatchString(message) {
		q.Rooms = 0
	} else {
		q.Rooms = 2
	}

	if noStairsRe.MatchString(message) {
		q.Stairs = false
		q.HasStairsInfo = true
	} else if stairsRe.MatchString(message) {
		q.Stairs = true
		q.HasStairsInfo = true
	}
	return q, true
}
