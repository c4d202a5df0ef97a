package core

// value.go provides cell-level numeric conversion for the sensor CSV format.
//
// The input files use a decimal comma (European convention) and mark a
// missing reading with the sentinel -200. Both conventions are normalized
// here: cells become pgtype.Float8 with Valid=false meaning "no value",
// which flows unchanged from parsing through validation to the store.

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// sentinelNoReading is the dataset's placeholder for "no reading". Only an
// exact match after parsing counts; -200.5 is a genuine measurement.
const sentinelNoReading = -200

// parseReading converts a decimal-comma cell to a float value.
// Returns invalid for empty or unparsable cells: malformed cells degrade
// to "no value", they never fail a load.
func parseReading(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{}
	}

	// Decimal comma: "18,5" means 18.5. Cells with more than one comma do
	// not survive ParseFloat and degrade to invalid.
	s = strings.Replace(s, ",", ".", 1)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// applySentinel maps the no-reading sentinel to an absent value.
func applySentinel(v pgtype.Float8) pgtype.Float8 {
	if v.Valid && v.Float64 == sentinelNoReading {
		return pgtype.Float8{}
	}
	return v
}

// coerceNumeric parses every cell of a textual column into float values.
// Used for the T and RH columns when stray non-numeric cells kept the
// loader from classifying them numeric. Sentinel replacement happens only
// at load time for numeric columns, so a literal -200 in a coerced column
// stays -200 and fails its range check.
func coerceNumeric(cells []string) []pgtype.Float8 {
	out := make([]pgtype.Float8, len(cells))
	for i, c := range cells {
		out[i] = parseReading(c)
	}
	return out
}
