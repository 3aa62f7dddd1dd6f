package user

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultLanguage = "en"
	DefaultTimezone = "UTC"

	nameMinLength  = 3
	nameMaxLength  = 20
	nameBaseLength = 14
	nameSuffixSize = 5
	nameSuffixSet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// User is a league participant. IDs are assigned by the chat platform.
type User struct {
	ID             int64
	Name           string
	Language       string
	Timezone       string
	Active         bool
	CompetitionIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Subscribed reports whether the user follows the competition.
func (u User) Subscribed(competitionID string) bool {
	return slices.Contains(u.CompetitionIDs, competitionID)
}

// ToggleCompetition subscribes or unsubscribes the competition and returns
// the new subscription state.
func (u *User) ToggleCompetition(competitionID string) bool {
	if idx := slices.Index(u.CompetitionIDs, competitionID); idx >= 0 {
		u.CompetitionIDs = slices.Delete(u.CompetitionIDs, idx, idx+1)
		return false
	}
	u.CompetitionIDs = append(u.CompetitionIDs, competitionID)
	return true
}

func allowedNameRune(r rune) bool {
	switch {
	case r >= ' ' && r <= '~':
		return true
	case r >= 'À' && r <= 'ž':
		return true
	case r >= 0x0370 && r <= 0x03FF:
		return true
	case r >= 'А' && r <= 'я', r == 'ё', r == 'Ё':
		return true
	case r == '∂':
		return true
	}
	return false
}

// ValidName reports whether name uses allowed characters and has 3 to 20 runes.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < nameMinLength || n > nameMaxLength {
		return false
	}
	for _, r := range name {
		if !allowedNameRune(r) {
			return false
		}
	}
	return true
}

// FormatName returns a display name derived from the raw chat name. Names that
// cannot be used as is are stripped, cut to 14 runes and given a random suffix.
func FormatName(raw string) string {
	name := strings.TrimSpace(raw)
	if ValidName(name) {
		return name
	}

	base := make([]rune, 0, nameBaseLength)
	for _, r := range name {
		if len(base) == nameBaseLength {
			break
		}
		if allowedNameRune(r) {
			base = append(base, r)
		}
	}

	suffix := make([]byte, nameSuffixSize)
	for i := range suffix {
		suffix[i] = nameSuffixSet[rand.IntN(len(nameSuffixSet))]
	}

	return strings.TrimSpace(string(base)) + "-" + string(suffix)
}
