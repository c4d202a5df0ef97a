package core

// timestamp.go combines the Date and Time columns of a sensor frame into
// UTC timestamps.
//
// The exports carry dates as DD/MM/YYYY and times as HH.MM.SS in separate
// columns with no zone information; readings are taken to be UTC. A row
// whose date or time is empty or malformed gets an absent timestamp rather
// than an error, and the validation stage decides what to do with it.

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	dateColumn = "Date"
	timeColumn = "Time"

	// DD/MM/YYYY HH.MM.SS, e.g. "10/03/2004 18.00.00"
	timestampLayout = "02/01/2006 15.04.05"
)

// BuildTimestamp parses a date cell and a time cell into a UTC timestamp.
// It returns an absent value when either cell is empty or the combination
// does not match the expected layout.
func BuildTimestamp(date, clock string) pgtype.Timestamptz {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return pgtype.Timestamptz{}
	}

	ts, err := time.ParseInLocation(timestampLayout, date+" "+clock, time.UTC)
	if err != nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: ts, Valid: true}
}

// buildTimestamps returns one timestamp per frame row, built from the Date
// and Time columns. A missing column yields absent timestamps for every
// row.
func buildTimestamps(f *Frame) []pgtype.Timestamptz {
	dates, _ := f.Column(dateColumn)
	clocks, _ := f.Column(timeColumn)

	stamps := make([]pgtype.Timestamptz, f.Rows)
	for i := range stamps {
		var date, clock string
		if dates != nil {
			date = dates.Cells[i]
		}
		if clocks != nil {
			clock = clocks.Cells[i]
		}
		stamps[i] = BuildTimestamp(date, clock)
	}
	return stamps
}
