package plane

// Scale is a linear mapping between a two-point domain and a two-point range.
type Scale struct {
	Domain [2]float64
	Range  [2]float64
}

// NewScale creates a linear scale. A degenerate domain or range maps every
// input to the midpoint of the opposite interval.
func NewScale(domain, rng [2]float64) Scale {
	return Scale{Domain: domain, Range: rng}
}

// Apply maps a domain value to the range.
func (s Scale) Apply(v float64) float64 {
	return interpolate(v, s.Domain, s.Range)
}

// Invert maps a range value back to the domain.
func (s Scale) Invert(v float64) float64 {
	return interpolate(v, s.Range, s.Domain)
}

func interpolate(v float64, from, to [2]float64) float64 {
	span := from[1] - from[0]
	if span == 0 {
		return (to[0] + to[1]) / 2
	}
	t := (v - from[0]) / span
	return to[0]*(1-t) + to[1]*t
}
