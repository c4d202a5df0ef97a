package core

import (
	"strings"
	"testing"
	"time"
)

func testRules() Rules {
	return Rules{
		DefaultSensorID: "Station_1",
		DefaultLocation: "Milan_AirQuality",
		TempMinC:        -50,
		TempMaxC:        50,
		RHMin:           0,
		RHMax:           100,
	}
}

func loadTestFrame(t *testing.T, input string) *Frame {
	t.Helper()
	frame, err := ReadFrame(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	return frame
}

func TestValidateTransform_ValidTemperature(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;T\n10/03/2004;18.00.00;18,5\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(invalid) != 0 {
		t.Fatalf("got %d invalid rows, want 0", len(invalid))
	}
	if len(valid) != 1 {
		t.Fatalf("got %d valid rows, want 1", len(valid))
	}

	r := valid[0]
	if r.ReadingType != "temperature" {
		t.Errorf("ReadingType = %q, want %q", r.ReadingType, "temperature")
	}
	if r.ReadingValue != 18.5 {
		t.Errorf("ReadingValue = %g, want 18.5", r.ReadingValue)
	}
	if !r.Unit.Valid || r.Unit.String != "C" {
		t.Errorf("Unit = %+v, want C", r.Unit)
	}
	if r.SensorID != "Station_1" || r.Location != "Milan_AirQuality" {
		t.Errorf("defaults not attached: %+v", r)
	}
	want := time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC)
	if !r.Ts.Equal(want) {
		t.Errorf("Ts = %v, want %v", r.Ts, want)
	}
}

func TestValidateTransform_SentinelDroppedSilently(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;T\n10/03/2004;18.00.00;-200\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(valid) != 0 || len(invalid) != 0 {
		t.Errorf("sentinel row must appear in neither partition: valid=%d invalid=%d", len(valid), len(invalid))
	}
}

func TestValidateTransform_OutOfRange(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;T\n10/03/2004;18.00.00;180,0\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(valid) != 0 {
		t.Fatalf("got %d valid rows, want 0", len(valid))
	}
	if len(invalid) != 1 {
		t.Fatalf("got %d invalid rows, want 1", len(invalid))
	}
	if invalid[0].ErrorReason != ReasonOutOfRange {
		t.Errorf("ErrorReason = %q, want %q", invalid[0].ErrorReason, ReasonOutOfRange)
	}
	if !invalid[0].ReadingValue.Valid || invalid[0].ReadingValue.Float64 != 180.0 {
		t.Errorf("ReadingValue = %+v, want 180.0", invalid[0].ReadingValue)
	}
}

func TestValidateTransform_BoundaryValuesPass(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;T;RH\n"+
		"10/03/2004;18.00.00;-50;0\n"+
		"10/03/2004;19.00.00;50;100\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(invalid) != 0 {
		t.Fatalf("inclusive bounds: got %d invalid rows, want 0", len(invalid))
	}
	if len(valid) != 4 {
		t.Fatalf("got %d valid rows, want 4", len(valid))
	}
}

func TestValidateTransform_BadTimestampMakesRowMissingKey(t *testing.T) {
	// Scenario: unparsable Date/Time taints every measurement of that row.
	frame := loadTestFrame(t, "Date;Time;T;RH\nbogus;18.00.00;18,5;45,0\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(valid) != 0 {
		t.Fatalf("got %d valid rows, want 0", len(valid))
	}
	if len(invalid) != 2 {
		t.Fatalf("got %d invalid rows, want 2 (one per measurement column)", len(invalid))
	}
	for _, r := range invalid {
		if r.ErrorReason != ReasonMissingKeyField {
			t.Errorf("ErrorReason = %q, want %q", r.ErrorReason, ReasonMissingKeyField)
		}
		if r.Ts.Valid {
			t.Error("Ts should be absent")
		}
	}
}

func TestValidateTransform_MissingKeyWinsOverMissingValue(t *testing.T) {
	// A row missing its key is always reported, even when the value is also
	// absent.
	frame := loadTestFrame(t, "Date;Time;T\nbogus;18.00.00;-200\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(valid) != 0 {
		t.Fatalf("got %d valid rows, want 0", len(valid))
	}
	if len(invalid) != 1 {
		t.Fatalf("got %d invalid rows, want 1", len(invalid))
	}
	if invalid[0].ErrorReason != ReasonMissingKeyField {
		t.Errorf("ErrorReason = %q, want %q", invalid[0].ErrorReason, ReasonMissingKeyField)
	}
	if invalid[0].ReadingValue.Valid {
		t.Error("ReadingValue should be absent")
	}
}

func TestValidateTransform_EmptySensorID(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;T\n10/03/2004;18.00.00;18,5\n")
	rules := testRules()
	rules.DefaultSensorID = "   "

	valid, invalid := ValidateTransform(frame, rules)
	if len(valid) != 0 {
		t.Fatalf("got %d valid rows, want 0", len(valid))
	}
	if len(invalid) != 1 || invalid[0].ErrorReason != ReasonMissingKeyField {
		t.Fatalf("blank sensor id should make rows missing_key_field: %+v", invalid)
	}
}

func TestValidateTransform_PassThroughSensorColumns(t *testing.T) {
	// Gas sensor columns are auto-discovered, lowercased, unitless, and
	// never range-checked.
	frame := loadTestFrame(t, "Date;Time;PT08.S1(CO);NOx(GT)\n"+
		"10/03/2004;18.00.00;1360;99999\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(invalid) != 0 {
		t.Fatalf("pass-through types have no bounds, got %d invalid", len(invalid))
	}
	if len(valid) != 2 {
		t.Fatalf("got %d valid rows, want 2", len(valid))
	}

	byType := map[string]Reading{}
	for _, r := range valid {
		byType[r.ReadingType] = r
	}
	if _, ok := byType["pt08.s1(co)"]; !ok {
		t.Errorf("reading types = %v, want lowercased pt08.s1(co)", byType)
	}
	if r := byType["nox(gt)"]; r.Unit.Valid {
		t.Errorf("pass-through reading should have no unit, got %+v", r.Unit)
	}
}

func TestValidateTransform_HumidityAliases(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;RH\n10/03/2004;18.00.00;48,9\n")

	valid, _ := ValidateTransform(frame, testRules())
	if len(valid) != 1 {
		t.Fatalf("got %d valid rows, want 1", len(valid))
	}
	if valid[0].ReadingType != "humidity" {
		t.Errorf("ReadingType = %q, want humidity", valid[0].ReadingType)
	}
	if !valid[0].Unit.Valid || valid[0].Unit.String != "%" {
		t.Errorf("Unit = %+v, want %%", valid[0].Unit)
	}
}

func TestValidateTransform_TextualTCoerced(t *testing.T) {
	// A stray non-numeric cell demotes T to textual at load time; the
	// validator still treats it as a measurement column, degrading the bad
	// cell to a dropped reading.
	frame := loadTestFrame(t, "Date;Time;T\n"+
		"10/03/2004;18.00.00;glitch\n"+
		"10/03/2004;19.00.00;18,5\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(invalid) != 0 {
		t.Fatalf("got %d invalid rows, want 0", len(invalid))
	}
	if len(valid) != 1 || valid[0].ReadingValue != 18.5 {
		t.Fatalf("valid = %+v, want single 18.5 reading", valid)
	}
}

func TestValidateTransform_NoMeasurementColumns(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;Note\n10/03/2004;18.00.00;calibration\n")

	valid, invalid := ValidateTransform(frame, testRules())
	if len(valid) != 0 || len(invalid) != 0 {
		t.Errorf("no measurement columns should yield empty partitions: valid=%d invalid=%d", len(valid), len(invalid))
	}
}

func TestValidateTransform_PartitionIsTotalAndDisjoint(t *testing.T) {
	frame := loadTestFrame(t, "Date;Time;T;RH\n"+
		"10/03/2004;18.00.00;18,5;48,9\n"+ // both valid
		"10/03/2004;19.00.00;180,0;-200\n"+ // T out of range, RH dropped
		"bogus;20.00.00;19,0;50,0\n") // both missing key

	valid, invalid := ValidateTransform(frame, testRules())

	// Six reshaped readings: row 1 gives 2 valid, row 2 gives 1 invalid and
	// 1 silently dropped, row 3 gives 2 invalid. Every present-value
	// reading lands in exactly one partition; the dropped one in neither.
	if len(valid) != 2 {
		t.Errorf("got %d valid rows, want 2", len(valid))
	}
	if len(invalid) != 3 {
		t.Errorf("got %d invalid rows, want 3", len(invalid))
	}
}
