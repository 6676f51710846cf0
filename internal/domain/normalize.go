package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// trailingLocationRe captures a parenthesized location at the end of a feed
// title, e.g. "African Swine Fever (Viet Nam)" -> "Viet Nam".
var trailingLocationRe = regexp.MustCompile(`\(([^)]+)\)\s*$`)

// diseaseKeywords maps known substrings to disease types. Entries are
// ordered longest-first within each disease so matches stay deterministic.
var diseaseKeywords = []struct {
	keyword string
	disease string
}{
	{"highly pathogenic avian influenza", DiseaseAvianInfluenza},
	{"avian influenza", DiseaseAvianInfluenza},
	{"bird flu", DiseaseAvianInfluenza},
	{"h5n1", DiseaseAvianInfluenza},
	{"h5n8", DiseaseAvianInfluenza},
	{"african swine fever", DiseaseAfricanSwineFever},
	{"asf", DiseaseAfricanSwineFever},
	{"newcastle", DiseaseNewcastle},
	{"foot and mouth", DiseaseFootMouth},
	{"fmd", DiseaseFootMouth},
}

// NormalizedRecord is an outbreak candidate between normalization and
// geocoding. Latitude/Longitude are set only when the source supplied them;
// otherwise LocationText is resolved by the geocoding chain.
type NormalizedRecord struct {
	Title           string
	DiseaseType     string
	LocationText    string
	Latitude        *float64
	Longitude       *float64
	Severity        string
	Date            time.Time
	AffectedAnimals int
	RiskRadiusKm    float64
}

// Outbreak materializes the record into a canonical Outbreak once an ID and
// resolved coordinates are known.
func (n NormalizedRecord) Outbreak(id string, lat, lng float64, createdAt time.Time) Outbreak {
	return Outbreak{
		ID:              id,
		Title:           n.Title,
		DiseaseType:     n.DiseaseType,
		Latitude:        lat,
		Longitude:       lng,
		Severity:        n.Severity,
		Date:            n.Date,
		AffectedAnimals: n.AffectedAnimals,
		RiskRadiusKm:    n.RiskRadiusKm,
		CreatedAt:       createdAt,
	}
}

// Normalize maps a tagged raw record into a NormalizedRecord. It fails only
// when the record lacks the minimum required fields (a title and a
// resolvable date); callers count such failures as record parse errors.
func Normalize(raw RawRecord) (NormalizedRecord, error) {
	switch {
	case raw.Report != nil:
		return NormalizeReport(*raw.Report)
	case raw.FeedItem != nil:
		return NormalizeFeedItem(*raw.FeedItem)
	default:
		return NormalizedRecord{}, fmt.Errorf("normalize: empty raw record")
	}
}

// NormalizeReport converts a polling-API report into the canonical shape.
// The stored title follows the "<disease> - <country>" convention so that
// duplicate detection works across repeated fetch windows.
func NormalizeReport(r RawOutbreakReport) (NormalizedRecord, error) {
	if strings.TrimSpace(r.Disease) == "" {
		return NormalizedRecord{}, fmt.Errorf("normalize report %q: missing disease name", r.ReportID)
	}
	date, err := parseReportDate(r.ReportDate)
	if err != nil {
		return NormalizedRecord{}, fmt.Errorf("normalize report %q: %w", r.ReportID, err)
	}

	affected := 0
	if r.AffectedAnimals != nil && *r.AffectedAnimals > 0 {
		affected = *r.AffectedAnimals
	}

	return NormalizedRecord{
		Title:           TruncateTitle(fmt.Sprintf("%s - %s", r.Disease, r.Country)),
		DiseaseType:     ClassifyDisease(r.Disease),
		LocationText:    r.Country,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Severity:        DeriveSeverity(r.Severity, affected),
		Date:            date,
		AffectedAnimals: affected,
		RiskRadiusKm:    DeriveRiskRadius(affected),
	}, nil
}

// NormalizeFeedItem converts a syndication feed item into the canonical
// shape. Feed items carry no coordinates or counts; location comes from the
// title and is resolved downstream.
func NormalizeFeedItem(item RawFeedItem) (NormalizedRecord, error) {
	if strings.TrimSpace(item.Title) == "" {
		return NormalizedRecord{}, fmt.Errorf("normalize feed item: missing title")
	}
	if item.Published.IsZero() {
		return NormalizedRecord{}, fmt.Errorf("normalize feed item %q: missing publication date", item.Title)
	}

	return NormalizedRecord{
		Title:           TruncateTitle(item.Title),
		DiseaseType:     ClassifyDisease(item.Title),
		LocationText:    ExtractLocation(item.Title),
		Severity:        DeriveSeverity("", 0),
		Date:            item.Published,
		AffectedAnimals: 0,
		RiskRadiusKm:    DeriveRiskRadius(0),
	}, nil
}

// ClassifyDisease maps a free-text disease name or feed title to one of the
// known disease types by case-insensitive substring matching. Unmatched
// input returns DiseaseAvianInfluenza.
func ClassifyDisease(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range diseaseKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.disease
		}
	}
	return DiseaseAvianInfluenza
}

// ExtractLocation pulls the location segment from a feed title formatted as
// "<event> - <location>" or "<event> (<location>)". Returns "Unknown" when
// neither pattern matches.
func ExtractLocation(title string) string {
	if m := trailingLocationRe.FindStringSubmatch(title); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	parts := strings.Split(title, " - ")
	if len(parts) > 1 {
		if loc := strings.TrimSpace(parts[len(parts)-1]); loc != "" {
			return loc
		}
	}
	return "Unknown"
}

// DeriveSeverity returns the source-supplied severity when it is a known
// tier, otherwise derives one from the affected animal count. An unknown
// count (zero) defaults to medium.
func DeriveSeverity(sourceSeverity string, affectedAnimals int) string {
	if s := strings.ToLower(strings.TrimSpace(sourceSeverity)); ValidSeverity(s) {
		return s
	}
	switch {
	case affectedAnimals > 1000:
		return SeverityHigh
	case affectedAnimals > 100:
		return SeverityMedium
	case affectedAnimals > 0:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// DeriveRiskRadius sizes the alert radius in kilometers from the affected
// animal count. Always positive.
func DeriveRiskRadius(affectedAnimals int) float64 {
	switch {
	case affectedAnimals > 1000:
		return 50
	case affectedAnimals > 0:
		return 25
	default:
		return 30
	}
}

// TruncateTitle limits a title to MaxTitleLen runes.
func TruncateTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= MaxTitleLen {
		return title
	}
	return string(runes[:MaxTitleLen])
}

// DedupeTitlePrefix returns the title fragment used for duplicate detection:
// the first DedupeTitlePrefixLen runes of the normalized title.
func DedupeTitlePrefix(title string) string {
	runes := []rune(title)
	if len(runes) <= DedupeTitlePrefixLen {
		return title
	}
	return string(runes[:DedupeTitlePrefixLen])
}

// parseReportDate accepts the ISO-8601 shapes the polling endpoint emits:
// full RFC 3339 timestamps and bare dates.
func parseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing report date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable report date %q", s)
}
