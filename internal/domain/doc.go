// Package domain models livestock disease outbreak data gathered from
// external surveillance feeds.
//
// # Data Sources
//
// Outbreak reports arrive through two adapter shapes. A polling-API adapter
// fetches a time-windowed JSON array of loosely-typed outbreak objects from a
// WAHIS-style registry endpoint (World Animal Health Information System). A
// feed adapter parses a ProMED-style RSS feed (Program for Monitoring
// Emerging Diseases) whose item titles carry the disease and location.
//
// # Feed Title Conventions
//
// ProMED-style titles encode the event location at the end of the title:
//
//	"Avian Influenza - India"          → location "India"
//	"African Swine Fever (Viet Nam)"   → location "Viet Nam"
//
// When neither the trailing parenthesized segment nor the dash-separated
// segment is present, the location is "Unknown" and resolution falls to the
// geocoding chain. See [ExtractLocation].
//
// # Disease Classification
//
// Free-text disease names are classified by case-insensitive substring
// matching against a fixed keyword table ("h5n1", "bird flu" → avian
// influenza; "asf" → African swine fever; and so on). Unmatched input falls
// back to avian influenza rather than failing, because upstream feeds are
// noisy and a miscategorized report is more useful than a dropped one. See
// [ClassifyDisease].
//
// # Severity and Risk Radius
//
// When the source supplies no severity, it is derived from the affected
// animal count:
//
//	>1000 animals → high | >100 → medium | >0 → low | unknown → medium
//
// The risk radius widens with outbreak size: 50 km for outbreaks above 1000
// affected animals, 25 km for smaller counted outbreaks, and 30 km when the
// count is unknown. See [DeriveSeverity] and [DeriveRiskRadius].
//
// # Proximity Alerting
//
// Farm-to-outbreak distance uses the Haversine great-circle formula with an
// Earth radius of 6371 km. A farm is alerted when an outbreak lies within
// 200 km; all qualifying outbreaks for one farm are batched into a single
// notification request sorted by ascending distance. See
// [ComputeProximityAlerts].
package domain
