package core

// dedupe.go derives the idempotency key that makes raw-reading inserts safe
// to retry, and assembles the storable rows for one file.

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// keyTimestampLayout renders a UTC timestamp inside the dedupe key: RFC 3339
// with a numeric +00:00 offset and no fractional seconds. Keys derived with
// this layout already exist in production stores, so it must never change.
const keyTimestampLayout = "2006-01-02T15:04:05-07:00"

// DedupeKey returns the deterministic fingerprint of one reading's identity
// fields, as lowercase hex. Identical (sensor, timestamp, type, file)
// tuples always collide, and the store treats the collision as "already
// ingested": at-least-once submission, at-most-once storage.
func DedupeKey(sensorID string, ts time.Time, readingType, fileName string) string {
	key := fmt.Sprintf("%s|%s|%s|%s",
		sensorID, ts.UTC().Format(keyTimestampLayout), readingType, fileName)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// BuildRawReadings stamps valid readings with their provenance (source name
// and file name) and dedupe keys, producing rows ready for the store. Empty
// input yields an empty result.
func BuildRawReadings(valid []Reading, fileName, source string) []RawReading {
	if len(valid) == 0 {
		return nil
	}
	rows := make([]RawReading, len(valid))
	for i, r := range valid {
		rows[i] = RawReading{
			Reading:   r,
			Source:    source,
			FileName:  fileName,
			DedupeKey: DedupeKey(r.SensorID, r.Ts, r.ReadingType, fileName),
		}
	}
	return rows
}
