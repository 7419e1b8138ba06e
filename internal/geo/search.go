package geo

// Locatable is anything that sits at a point on the map.
type Locatable interface {
	Coordinate() Coordinate
}

// FindWithinRadius returns the candidates whose distance from center is at
// most radiusKm, keeping their input order. The result never aliases
// candidates and is empty (not nil) when nothing matches.
func FindWithinRadius[T Locatable](center Coordinate, radiusKm float64, candidates []T) []T {
	result := make([]T, 0)
	if radiusKm < 0 || len(candidates) == 0 {
		return result
	}

	for _, candidate := range candidates {
		if DistanceKm(center, candidate.Coordinate()) <= radiusKm {
			result = append(result, candidate)
		}
	}

	return result
}
