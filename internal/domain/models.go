package domain

import (
	"math"
	"strings"
	"time"
)

// Domain contains core models shared by ingestion, query and publishing.

// Text is a bilingual (English/Arabic) string pair.
type Text struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// In returns the value for lang, falling back to English and then Arabic.
func (t Text) In(lang string) string {
	if strings.EqualFold(lang, LangAR) && t.AR != "" {
		return t.AR
	}
	if strings.EqualFold(lang, LangEN) && t.EN != "" {
		return t.EN
	}
	if t.EN != "" {
		return t.EN
	}
	return t.AR
}

// Empty reports whether both sides are blank.
func (t Text) Empty() bool {
	return t.EN == "" && t.AR == ""
}

const (
	LangEN = "en"
	LangAR = "ar"
)

// DeadlineLayout is the ISO-8601 calendar date format deadlines are expected in.
const DeadlineLayout = "2006-01-02"

// Listing is the canonical scholarship record produced by every source.
type Listing struct {
	ID            string `json:"id"`
	Name          Text   `json:"name"`
	Field         string `json:"field"`
	DegreeLevel   string `json:"degree_level,omitempty"`
	Destination   *Text  `json:"destination,omitempty"`
	Deadline      string `json:"deadline"`
	DeadlineValid bool   `json:"deadline_valid"`
	ApplyURL      string `json:"apply_url"`
	Description   Text   `json:"description"`
	Source        string `json:"source,omitempty"`
}

// DeadlineTime parses Deadline; ok is false when it is not a valid calendar date.
func (l Listing) DeadlineTime() (time.Time, bool) {
	return ParseDeadline(l.Deadline)
}

// ParseDeadline parses an ISO date, tolerating a trailing time component.
func ParseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(DeadlineLayout) && raw[len(DeadlineLayout)] == 'T' {
		raw = raw[:len(DeadlineLayout)]
	}
	t, err := time.Parse(DeadlineLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DestinationIn returns the destination text for lang, or "" when the listing has none.
func (l Listing) DestinationIn(lang string) string {
	if l.Destination == nil {
		return ""
	}
	return l.Destination.In(lang)
}

// ClosingSoonDays is the window, in whole days ahead, in which a deadline is
// flagged as closing soon.
const ClosingSoonDays = 30

// ClosingSoon reports whether the deadline falls 1 to ClosingSoonDays whole
// days after now. Deadlines are taken as midnight UTC; invalid ones never
// close soon.
func (l Listing) ClosingSoon(now time.Time) bool {
	deadline, ok := l.DeadlineTime()
	if !ok {
		return false
	}
	days := int(math.Floor(deadline.Sub(now).Hours() / 24))
	return days > 0 && days <= ClosingSoonDays
}
