package domain

import (
	"sort"
	"time"
)

// DefaultAlertRadiusKm is the distance threshold within which a farm
// operator is alerted about an outbreak.
const DefaultAlertRadiusKm = 200

// ProximityAlert pairs one outbreak with its distance from a farm.
type ProximityAlert struct {
	Outbreak   Outbreak `json:"outbreak"`
	DistanceKm float64  `json:"distance_km"`
}

// NotificationRequest is the ephemeral unit of work handed to the external
// delivery component. One request per farm, alerts sorted by ascending
// distance. Never persisted by this service.
type NotificationRequest struct {
	FarmID    string           `json:"farm_id"`
	OwnerID   string           `json:"owner_id"`
	FarmName  string           `json:"farm_name"`
	Alerts    []ProximityAlert `json:"alerts"`
	EmittedAt time.Time        `json:"emitted_at"`
}

// ComputeProximityAlerts computes great-circle distances between every farm
// and every candidate outbreak and batches the qualifying pairs into one
// NotificationRequest per farm. Farms without coordinates or with
// notifications disabled are skipped silently; farms with no qualifying
// outbreak produce no request.
func ComputeProximityAlerts(farms []Farm, outbreaks []Outbreak, thresholdKm float64) []NotificationRequest {
	var requests []NotificationRequest

	for _, farm := range farms {
		if !farm.NotificationsEnabled || !farm.HasCoordinates() {
			continue
		}

		var alerts []ProximityAlert
		for _, o := range outbreaks {
			d := HaversineKm(*farm.Latitude, *farm.Longitude, o.Latitude, o.Longitude)
			if d <= thresholdKm {
				alerts = append(alerts, ProximityAlert{Outbreak: o, DistanceKm: d})
			}
		}
		if len(alerts) == 0 {
			continue
		}

		sort.Slice(alerts, func(i, j int) bool {
			return alerts[i].DistanceKm < alerts[j].DistanceKm
		})

		requests = append(requests, NotificationRequest{
			FarmID:    farm.ID,
			OwnerID:   farm.OwnerID,
			FarmName:  farm.Name,
			Alerts:    alerts,
			EmittedAt: clock.Now(),
		})
	}

	return requests
}
