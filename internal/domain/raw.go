package domain

import "time"

// RawOutbreakReport is the loosely-typed object returned by the WAHIS-style
// polling endpoint. Coordinates and counts are pointers because the upstream
// omits them freely.
type RawOutbreakReport struct {
	ReportID        string   `json:"reportId"`
	Country         string   `json:"country"`
	Disease         string   `json:"disease"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	ReportDate      string   `json:"reportDate"`
	AffectedAnimals *int     `json:"affectedAnimals,omitempty"`
	Severity        string   `json:"severity,omitempty"`
}

// RawFeedItem is one item from a ProMED-style syndication feed.
type RawFeedItem struct {
	Title     string
	Link      string
	Published time.Time
	Content   string
}

// RawRecord is the tagged container handed from a source adapter to the
// normalizer. Exactly one field is set; the normalizer is the single
// translation boundary into the canonical outbreak shape.
type RawRecord struct {
	Report   *RawOutbreakReport
	FeedItem *RawFeedItem
}

// FromPollingAPI reports whether the record came through the polling-API
// adapter. The polling path skips records without source-supplied
// coordinates instead of invoking the geocode resolver.
func (r RawRecord) FromPollingAPI() bool {
	return r.Report != nil
}
