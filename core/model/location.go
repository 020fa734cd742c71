package model

import "fmt"

// Location is an immutable positional identity. Implementations are value
// types and must never be mutated after creation.
type Location interface {
	Eq(other Location) bool
	String() string
}

// LabelLocation identifies a network node by its symbolic label. Longitude
// and latitude are optional and do not participate in equality.
type LabelLocation struct {
	Label string
	Lon   float64
	Lat   float64
}

// NewLabelLocation creates a label location without coordinates.
func NewLabelLocation(label string) LabelLocation {
	return LabelLocation{Label: label}
}

// Eq compares by label only.
func (l LabelLocation) Eq(other Location) bool {
	o, ok := other.(LabelLocation)
	return ok && o.Label == l.Label
}

func (l LabelLocation) String() string {
	if l.Lon != 0 || l.Lat != 0 {
		return fmt.Sprintf("%s: (%v,%v)", l.Label, l.Lon, l.Lat)
	}
	return l.Label
}

// TimeCoordinatesLocation is a timestamped position. Equality is over the
// full tuple.
type TimeCoordinatesLocation struct {
	Time float64
	Lon  float64
	Lat  float64
}

// Eq compares time, longitude and latitude.
func (l TimeCoordinatesLocation) Eq(other Location) bool {
	o, ok := other.(TimeCoordinatesLocation)
	return ok && o.Time == l.Time && o.Lon == l.Lon && o.Lat == l.Lat
}

func (l TimeCoordinatesLocation) String() string {
	return fmt.Sprintf("%v: (%v,%v)", l.Time, l.Lon, l.Lat)
}
