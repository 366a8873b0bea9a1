package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownCategory is returned when a hazard type is not one of the known
// categories.
var ErrUnknownCategory = errors.New("unknown hazard category")

// Category classifies a hazard observation. The set is closed; presentation
// layers map each value to their own labels and icons.
type Category string

const (
	CategoryStreetLight Category = "street_light"
	CategoryUnsafe      Category = "unsafe"
	CategoryAnimal      Category = "animal"
	CategoryDarkStreet  Category = "dark_street"
	CategoryOther       Category = "other"
)

// Categories lists every hazard category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryStreetLight,
		CategoryUnsafe,
		CategoryAnimal,
		CategoryDarkStreet,
		CategoryOther,
	}
}

// ParseCategory maps a wire value onto a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// MaxWindowHours is the longest lookback window, in hours, accepted when
// listing hazards.
const MaxWindowHours = 8760

// Hazard is a single hazard observation. The scoring engine only reads
// hazards; ownership stays with whichever store produced them.
type Hazard struct {
	ID                string     `json:"id"`
	Location          Coordinate `json:"location"`
	Category          Category   `json:"type"`
	Description       string     `json:"description,omitempty"`
	Verified          bool       `json:"verified"`
	VerificationCount int        `json:"verification_count"`
	TimeAgo           string     `json:"time_ago,omitempty"`
	ReportedAt        time.Time  `json:"reported_at,omitzero"`
	Synthetic         bool       `json:"synthetic,omitempty"`
}

// TimeAgo renders the age of a report relative to now in the short form shown
// next to hazard markers.
func TimeAgo(reported, now time.Time) string {
	diff := now.Sub(reported)
	if diff < 0 {
		diff = 0
	}
	days := int(diff / (24 * time.Hour))
	if days > 0 {
		return fmt.Sprintf("%dd ago", days)
	}
	secs := int(diff / time.Second)
	switch {
	case secs > 3600:
		return fmt.Sprintf("%dh ago", secs/3600)
	case secs > 60:
		return fmt.Sprintf("%dm ago", secs/60)
	default:
		return "Just now"
	}
}
