package extraction

import (
	"regexp"
	"strings"

	"movebot/models"
)

var (
	nameLabelRe  = regexp.MustCompile(`(?i)\bname\s*:\s*([A-Za-z][A-Za-z .'-]{1,40})`)
	nameIntroRe  = regexp.MustCompile(`(?i:\b(?:i'm|i am|my name is|call me|this is)\s+)([A-Z][a-z'-]+(?: [A-Z][a-z'-]+)?)`)
	phoneRe      = regexp.MustCompile(`(\+?\d[\d\s().-]{8,18}\d)`)
	emailRe      = regexp.MustCompile(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
	phoneDigitRe = regexp.MustCompile(`\d`)
)

// Fallback extracts contact details with regex patterns when the language
// backend is unavailable. It only covers name, phone, and email, and it
// never marks a record ready: regex capture is not trustworthy enough to
// drive an automatic submission.
func Fallback(history []models.Message) models.BookingRecord {
	var rec models.BookingRecord
	for _, m := range history {
		if m.Role != models.RoleUser {
			continue
		}
		if rec.Name == "" {
			if match := nameLabelRe.FindStringSubmatch(m.Content); match != nil {
				rec.Name = strings.TrimSpace(match[1])
			} else if match := nameIntroRe.FindStringSubmatch(m.Content); match != nil {
				rec.Name = strings.TrimSpace(match[1])
			}
		}
		if rec.Phone == "" {
			if match := phoneRe.FindStringSubmatch(m.Content); match != nil {
				digits := len(phoneDigitRe.FindAllString(match[1], -1))
				if digits >= 10 && digits <= 15 {
					rec.Phone = strings.TrimSpace(match[1])
				}
			}
		}
		if rec.Email == "" {
			if match := emailRe.FindStringSubmatch(m.Content); match != nil {
				rec.Email = match[1]
			}
		}
	}
	rec.SpecialItems = "None"
	rec.ReadyToSubmit = false
	return rec
}
