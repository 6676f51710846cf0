package domain

import "time"

// Disease types recognized by the classifier. Unmatched input falls back to
// DiseaseAvianInfluenza.
const (
	DiseaseAvianInfluenza    = "avian_influenza"
	DiseaseAfricanSwineFever = "african_swine_fever"
	DiseaseNewcastle         = "newcastle_disease"
	DiseaseFootMouth         = "foot_mouth"
)

// Severity tiers, used for display and risk-radius sizing.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// MaxTitleLen is the maximum stored outbreak title length in runes. Source
// titles are truncated at normalization time.
const MaxTitleLen = 100

// DedupeTitlePrefixLen is the number of title runes used for duplicate
// detection: an incoming record is a duplicate when an existing title
// contains the incoming title's first 50 runes.
const DedupeTitlePrefixLen = 50

// Outbreak is the canonical representation of a confirmed or suspected
// disease event. Title, Date, and coordinates are immutable once persisted.
type Outbreak struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DiseaseType     string    `json:"disease_type"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Severity        string    `json:"severity"`
	Date            time.Time `json:"date"`
	AffectedAnimals int       `json:"affected_animals"`
	RiskRadiusKm    float64   `json:"risk_radius_km"`
	CreatedAt       time.Time `json:"created_at"`
}

// Farm is the read-only projection of a registered farm used for proximity
// alerting. Coordinates are optional; a farm without them is excluded from
// proximity computation.
type Farm struct {
	ID                   string   `json:"id"`
	OwnerID              string   `json:"owner_id"`
	Name                 string   `json:"name"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
}

// HasCoordinates reports whether the farm carries a usable coordinate pair.
func (f Farm) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// ValidCoordinates reports whether lat/lng lie within world bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidSeverity reports whether s is one of the known severity tiers.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}
