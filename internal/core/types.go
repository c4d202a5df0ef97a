package core

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Error reasons attached to invalid records.
const (
	ReasonMissingKeyField = "missing_key_field"
	ReasonOutOfRange      = "out_of_range"
)

// Rules carries the validation configuration consumed by ValidateTransform.
// The pipeline treats it as read-only; bounds are inclusive on both ends.
type Rules struct {
	// DefaultSensorID is attached to every reading. The input format carries
	// no per-row sensor column; an empty value marks every row as missing
	// its key field.
	DefaultSensorID string

	// DefaultLocation is attached to every reading.
	DefaultLocation string

	// TempMinC and TempMaxC bound accepted temperature readings in Celsius.
	TempMinC float64
	TempMaxC float64

	// RHMin and RHMax bound accepted relative-humidity readings in percent.
	RHMin float64
	RHMax float64
}

// Reading is one valid long-form measurement: a single (sensor, instant,
// type) observation extracted from a wide CSV row. Ts is always present and
// UTC; Unit is absent for pass-through reading types.
type Reading struct {
	SensorID     string
	Ts           time.Time
	ReadingType  string
	ReadingValue float64
	Unit         pgtype.Text
	Location     string
}

// RawReading is a Reading plus the persistence identity attached just
// before storage: origin metadata and the idempotency key.
type RawReading struct {
	Reading

	Source    string
	FileName  string
	DedupeKey string
}

// InvalidRecord mirrors a reshaped row that failed validation. Timestamp
// and value may be absent; ErrorReason is one of the Reason* constants.
type InvalidRecord struct {
	SensorID     string
	Ts           pgtype.Timestamptz
	Location     string
	ReadingType  string
	ReadingValue pgtype.Float8
	Unit         pgtype.Text
	ErrorReason  string
}

// FileAggregate summarizes the valid readings of one type within one file.
// WindowStart and WindowEnd span all valid rows of the file, not only the
// rows of this reading type.
type FileAggregate struct {
	FileName    string
	Source      string
	ReadingType string
	Count       int64
	MinValue    float64
	MaxValue    float64
	AvgValue    float64
	StddevValue float64
	WindowStart time.Time
	WindowEnd   time.Time
}
