package dialogue

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// callTriggers are the phrases that flip a session into the call-request
// flow. Matching is substring-based over the lowercased message.
var callTriggers = []string{
	"call me",
	"give me a call",
	"can you call",
	"can someone call",
	"have someone call",
	"i want a call",
	"request a call",
	"phone me",
	"talk to someone",
	"speak to someone",
	"speak with someone",
	"talk to a person",
	"talk to a human",
	"speak to a manager",
	"call back",
	"callback",
}

// DetectCallIntent reports whether the message asks for a phone call.
func DetectCallIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, t := range callTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

var timingParser = func() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}()

// ParseCallTiming extracts a call-back time preference from free text.
// It returns a human-readable timing string, or "as soon as possible"
// when nothing parseable is found.
func ParseCallTiming(message string, now time.Time) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "right now"), strings.Contains(lower, "asap"),
		strings.Contains(lower, "as soon as possible"), strings.Contains(lower, "immediately"):
		return "as soon as possible"
	case strings.Contains(lower, "later today"):
		return "later today"
	}

	if r, err := timingParser.Parse(message, now); err == nil && r != nil {
		if r.Time.Format("2006-01-02") == now.Format("2006-01-02") {
			return r.Time.Format("today at 3:04 PM")
		}
		return r.Time.Format("Monday, Jan 2 at 3:04 PM")
	}
	return "as soon as possible"
}
