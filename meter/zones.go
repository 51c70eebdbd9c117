package meter

import "fmt"

// ZoneAll is the zone selector meaning "capture the whole zone".  It is
// the historical default the driver expects for every meter when the
// caller does not say otherwise.
const ZoneAll = 1

// ZoneLengthError is generated when a zone override cannot be mapped to
// the device's meter count.  The zone contract is permissive but never
// silently lossy.
type ZoneLengthError struct {
	// Got is the override length supplied
	Got int

	// Want is the device's meter count
	Want int
}

func (e ZoneLengthError) Error() string {
	return fmt.Sprintf("zone override has %d elements, meter count is %d; want one per meter, a single broadcast value, or 4 (rectangle, single-meter devices only)", e.Got, e.Want)
}

// BuildZones produces the per-meter zone selector array passed to the
// driver's capture entry point.  meters must be at least 1, which the
// session guarantees.
//
// An empty override defaults every meter to ZoneAll.  A single-element
// override is broadcast to every meter.  An override with exactly one
// element per meter is used as-is.  On single-meter devices a 4-element
// override is passed through unchanged as a rectangular region
// (left, top, right, bottom).  Anything else fails.
func BuildZones(override []int32, meters int) ([]int32, error) {
	switch {
	case len(override) == 0:
		z := make([]int32, meters)
		for i := range z {
			z[i] = ZoneAll
		}
		return z, nil
	case len(override) == meters:
		return append([]int32(nil), override...), nil
	case len(override) == 1 && meters > 1:
		z := make([]int32, meters)
		for i := range z {
			z[i] = override[0]
		}
		return z, nil
	case meters == 1 && len(override) == 4:
		return append([]int32(nil), override...), nil
	}
	return nil, ZoneLengthError{Got: len(override), Want: meters}
}
