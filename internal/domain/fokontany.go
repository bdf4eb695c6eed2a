package domain

// Fokontany is the smallest administrative area in the addressing
// hierarchy (commune -> district -> region -> fokontany). Reference data,
// rarely mutated after import.
type Fokontany struct {
	ID           int64         `json:"id"`
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	Commune      string        `json:"commune"`
	District     string        `json:"district"`
	Region       string        `json:"region"`
	GeometryType string        `json:"geometry_type,omitempty"`
	Coordinates  [][][]float64 `json:"coordinates,omitempty"` // polygon rings, outer ring first
	CentroidLat  *float64      `json:"centroid_lat"`
	CentroidLng  *float64      `json:"centroid_lng"`
	Kind         string        `json:"kind"`
	Source       string        `json:"source,omitempty"`
}

// Centroid returns the average of the outer ring vertices, the same
// reduction the import scripts apply when no centroid is supplied.
func (f *Fokontany) Centroid() (lat, lng float64, ok bool) {
	if len(f.Coordinates) == 0 || len(f.Coordinates[0]) == 0 {
		return 0, 0, false
	}
	ring := f.Coordinates[0]
	var sumLat, sumLng float64
	n := 0
	for _, pt := range ring {
		if len(pt) < 2 {
			continue
		}
		// GeoJSON order: [lng, lat]
		sumLng += pt[0]
		sumLat += pt[1]
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return sumLat / float64(n), sumLng / float64(n), true
}
