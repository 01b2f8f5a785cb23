package trip

// Route is the first route the provider returned between two points.
type Route struct {
	Legs []Leg
}

// Leg is one origin-to-waypoint segment of a route.
type Leg struct {
	Steps []Step
}

// Step is one maneuver within a leg. When SubSteps is non-empty the step's
// own Polyline is ignored.
type Step struct {
	Polyline string
	SubSteps []SubStep
}

// SubStep is a transit or transfer part of a step.
type SubStep struct {
	Polyline string
}

// Trip is the ordered concatenation of every decoded polyline of a route.
type Trip []Coordinate

// IsEmpty reports whether the trip has no coordinates.
func (t Trip) IsEmpty() bool { return len(t) == 0 }

// DistanceMeters sums the great-circle distance between consecutive points.
func (t Trip) DistanceMeters() float64 {
	var total float64
	for i := 1; i < len(t); i++ {
		total += t[i-1].DistanceTo(t[i])
	}
	return total
}
