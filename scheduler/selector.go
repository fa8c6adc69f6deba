package scheduler

import "strings"

// MeetingTypeSelector is the parsed form of a meeting type reference. The
// raw value can be "id::slug", a bare numeric id, or a bare slug.
type MeetingTypeSelector struct {
	ID   string
	Slug string
}

func (s MeetingTypeSelector) Empty() bool {
	return s.ID == "" && s.Slug == ""
}

// ParseSelector splits a meeting type reference. Precedence: a "::" pair
// wins, then all-digits means id, anything else is a slug.
func ParseSelector(raw string) MeetingTypeSelector {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MeetingTypeSelector{}
	}
	if strings.Contains(raw, "::") {
		parts := strings.SplitN(raw, "::", 2)
		return MeetingTypeSelector{
			ID:   strings.TrimSpace(parts[0]),
			Slug: strings.TrimSpace(parts[1]),
		}
	}
	if allDigits(raw) {
		return MeetingTypeSelector{ID: raw}
	}
	return MeetingTypeSelector{Slug: raw}
}

func allDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, char := range value {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
