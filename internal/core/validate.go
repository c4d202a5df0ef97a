package core

// validate.go reshapes a wide sensor frame into long form (one reading per
// row) and partitions the result into valid and invalid records.
//
// Every numeric column other than Date/Time is a measurement column; its
// name decides the canonical reading type, the unit, and the range check.
// Partitioning follows a strict precedence per reading:
//
//  1. sensor id empty or timestamp absent  -> invalid (missing_key_field)
//  2. value absent                         -> dropped (neither partition)
//  3. value outside the type's range       -> invalid (out_of_range)
//  4. otherwise                            -> valid
//
// A reading missing its key is always reported, even when its value is also
// absent.

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// readingKind tags the finite set of validation behaviors.
type readingKind int

const (
	kindTemperature readingKind = iota
	kindHumidity
	kindOther
)

// readingClass is the resolved validation class for one measurement column:
// its canonical reading type, its unit (absent for pass-through sensors),
// and which range check applies.
type readingClass struct {
	kind      readingKind
	canonical string
	unit      pgtype.Text
}

// classifyReading maps an original column name to its reading class. The
// match is case-insensitive; unrecognized names pass through as lowercased
// sensor names with no unit and no enforced range.
func classifyReading(column string) readingClass {
	switch strings.ToLower(column) {
	case "t", "temp", "temperature":
		return readingClass{
			kind:      kindTemperature,
			canonical: "temperature",
			unit:      pgtype.Text{String: "C", Valid: true},
		}
	case "rh", "humidity":
		return readingClass{
			kind:      kindHumidity,
			canonical: "humidity",
			unit:      pgtype.Text{String: "%", Valid: true},
		}
	default:
		return readingClass{
			kind:      kindOther,
			canonical: strings.ToLower(column),
		}
	}
}

// inRange reports whether a present value satisfies the class's bounds.
// Bounds are inclusive on both ends; pass-through sensors always pass.
func (c readingClass) inRange(v float64, rules Rules) bool {
	switch c.kind {
	case kindTemperature:
		return rules.TempMinC <= v && v <= rules.TempMaxC
	case kindHumidity:
		return rules.RHMin <= v && v <= rules.RHMax
	default:
		return true
	}
}

// measurement pairs a measurement column's original name with its per-row
// values.
type measurement struct {
	name   string
	values []pgtype.Float8
}

// measurements selects the value-bearing columns of a frame.
//
// Numeric columns qualify directly. The well-known T and RH columns qualify
// even when they were read as text (stray units or placeholders in a few
// cells), with unparseable cells degrading to absent values. Other textual
// columns carry no measurements. Date and Time never qualify.
func measurements(f *Frame) []measurement {
	out := make([]measurement, 0, len(f.Columns))
	for i := range f.Columns {
		c := &f.Columns[i]
		if c.Name == dateColumn || c.Name == timeColumn {
			continue
		}
		if c.Numeric {
			out = append(out, measurement{name: c.Name, values: c.Floats})
			continue
		}
		if c.Name == "T" || c.Name == "RH" {
			out = append(out, measurement{name: c.Name, values: coerceNumeric(c.Cells)})
		}
	}
	return out
}

// ValidateTransform reshapes a frame into long form and partitions the
// readings into valid and invalid sets. It never fails: malformed data is
// returned as invalid records, not errors.
//
// The reshape emits one record per (measurement column, row) pair, column
// by column in frame order, so artifact output stays stable for identical
// input.
func ValidateTransform(f *Frame, rules Rules) ([]Reading, []InvalidRecord) {
	sensorID := strings.TrimSpace(rules.DefaultSensorID)
	stamps := buildTimestamps(f)

	var valid []Reading
	var invalid []InvalidRecord

	for _, m := range measurements(f) {
		class := classifyReading(m.name)
		for row := 0; row < f.Rows; row++ {
			ts := stamps[row]
			value := m.values[row]

			switch {
			case sensorID == "" || !ts.Valid:
				invalid = append(invalid, InvalidRecord{
					SensorID:     sensorID,
					Ts:           ts,
					Location:     rules.DefaultLocation,
					ReadingType:  class.canonical,
					ReadingValue: value,
					Unit:         class.unit,
					ErrorReason:  ReasonMissingKeyField,
				})
			case !value.Valid:
				// No reading: neither actionable nor erroneous.
			case !class.inRange(value.Float64, rules):
				invalid = append(invalid, InvalidRecord{
					SensorID:     sensorID,
					Ts:           ts,
					Location:     rules.DefaultLocation,
					ReadingType:  class.canonical,
					ReadingValue: value,
					Unit:         class.unit,
					ErrorReason:  ReasonOutOfRange,
				})
			default:
				valid = append(valid, Reading{
					SensorID:     sensorID,
					Ts:           ts.Time,
					ReadingType:  class.canonical,
					ReadingValue: value.Float64,
					Unit:         class.unit,
					Location:     rules.DefaultLocation,
				})
			}
		}
	}

	return valid, invalid
}
