package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe helpers for lengths written in theme files.

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers
	UnitPX                  // pixels
	UnitPT                  // points, 1pt == 1px at the 72 DPI the card is rendered at
	UnitPercent             // relative to a reference length
)

// Conversion constants between pixels and the millimetre user space of the
// canvas backend, which rasterizes at one pixel per millimetre.
const (
	PxPerPt = 1.0
	PtPerMm = 72.0 / 25.4
)

// String returns the unit suffix as written in theme files.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Px converts the length to pixels; percentages resolve against reference.
func (l Length) Px(reference float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerPt
	case UnitPercent:
		return reference * l.Value / 100
	default:
		return l.Value
	}
}

// Ratio returns the length as a fraction: 80% -> 0.8, a bare 0.8 stays 0.8.
func (l Length) Ratio() float64 {
	if l.Unit == UnitPercent {
		return l.Value / 100
	}
	return l.Value
}

// RoundPx converts to whole pixels.
func (l Length) RoundPx(reference float64) int {
	return int(math.Round(l.Px(reference)))
}

// ParseLength parses "120", "120px", "120pt" or "80%" preserving the unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// PxToCanvasPt converts a pixel font size to the point size the canvas
// backend expects for a face rendered at one pixel per millimetre.
func PxToCanvasPt(px float64) float64 { return px * PtPerMm }
