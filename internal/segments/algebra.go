// Package segments removes time-ranged entries from indexed media
// playlists. Exclusion windows come from an external categorization
// service; the algebra here only decides containment and overlap.
package segments

import (
	"encoding/json"
	"fmt"
)

// Range is one exclusion window in seconds. Segments are compared
// against it as half-open [start, end) intervals.
type Range struct {
	Start float64
	End   float64
}

// Mode selects how aggressively overlapping segments are removed.
type Mode int

const (
	// ModeStrict removes only segments fully contained in a range.
	// Conservative: never drops wanted content.
	ModeStrict Mode = iota
	// ModeOverestimate removes any segment that overlaps a range.
	// Aggressive: guarantees full removal, may trim adjacent frames.
	ModeOverestimate
)

// Excluded reports whether the segment [segStart, segEnd) should be
// dropped under the given mode.
func Excluded(mode Mode, segStart, segEnd float64, ranges []Range) bool {
	for _, r := range ranges {
		switch mode {
		case ModeOverestimate:
			if !(segEnd <= r.Start || segStart >= r.End) {
				return true
			}
		default:
			if segStart >= r.Start && segEnd <= r.End {
				return true
			}
		}
	}
	return false
}

// MarshalJSON encodes the range as a [start, end] pair, the wire form
// used by the rewrite endpoint's ranges parameter.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Start, r.End})
}

// UnmarshalJSON decodes a [start, end] pair.
func (r *Range) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("parse range: %w", err)
	}
	r.Start, r.End = pair[0], pair[1]
	return nil
}

// ParseRanges decodes the JSON array carried by the ranges query
// parameter. An empty or absent value is valid and means "no exclusions".
func ParseRanges(raw string) ([]Range, error) {
	if raw == "" {
		return nil, nil
	}
	var ranges []Range
	if err := json.Unmarshal([]byte(raw), &ranges); err != nil {
		return nil, fmt.Errorf("parse ranges: %w", err)
	}
	return ranges, nil
}

// EncodeRanges produces the wire form consumed by ParseRanges.
func EncodeRanges(ranges []Range) (string, error) {
	data, err := json.Marshal(ranges)
	if err != nil {
		return "", fmt.Errorf("encode ranges: %w", err)
	}
	return string(data), nil
}
