package intake

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/sensorpipe/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestUniqueDest(t *testing.T) {
	dir := t.TempDir()

	first := uniqueDest(dir, "data.csv")
	if first != filepath.Join(dir, "data.csv") {
		t.Errorf("first dest = %q, want plain name", first)
	}

	if err := os.WriteFile(first, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	second := uniqueDest(dir, "data.csv")
	if second != filepath.Join(dir, "data__1.csv") {
		t.Errorf("second dest = %q, want data__1.csv", second)
	}

	if err := os.WriteFile(second, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	third := uniqueDest(dir, "data.csv")
	if third != filepath.Join(dir, "data__2.csv") {
		t.Errorf("third dest = %q, want data__2.csv", third)
	}
}

func TestMoveFile_NeverOverwrites(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	srcA := filepath.Join(srcDir, "data.csv")
	if err := os.WriteFile(srcA, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	destA, err := moveFile(srcA, destDir)
	if err != nil {
		t.Fatalf("moveFile() error = %v", err)
	}

	srcB := filepath.Join(srcDir, "data.csv")
	if err := os.WriteFile(srcB, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	destB, err := moveFile(srcB, destDir)
	if err != nil {
		t.Fatalf("moveFile() error = %v", err)
	}

	if destA == destB {
		t.Fatalf("second move reused path %q", destA)
	}
	got, err := os.ReadFile(destA)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("first file content = %q, want untouched %q", got, "first")
	}
	if _, err := os.Stat(srcB); !os.IsNotExist(err) {
		t.Error("source should be gone after move")
	}
}

func TestMoveFile_CreatesDestDir(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "data.csv")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	destDir := filepath.Join(t.TempDir(), "not", "yet", "there")
	if _, err := moveFile(src, destDir); err != nil {
		t.Fatalf("moveFile() error = %v", err)
	}
}

func TestCopyFile_LeavesSource(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "data.csv")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	dest, err := copyFile(src, t.TempDir())
	if err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source should survive a copy")
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("copy content = %q, want %q", got, "payload")
	}
}

func TestDoneMarker(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if hasDoneMarker(src) {
		t.Fatal("fresh file should have no marker")
	}
	if err := writeDoneMarker(src); err != nil {
		t.Fatalf("writeDoneMarker() error = %v", err)
	}
	if !hasDoneMarker(src) {
		t.Error("marker should be detected after writing")
	}
}

func TestArtifactPath(t *testing.T) {
	got := artifactPath(filepath.Join("q", "data__1.csv"), "__errors.csv")
	want := filepath.Join("q", "data__1__errors.csv")
	if got != want {
		t.Errorf("artifactPath() = %q, want %q", got, want)
	}
}

func TestWriteErrorsArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data__errors.csv")
	rows := []core.InvalidRecord{
		{
			SensorID:     "Station_1",
			Location:     "Milan_AirQuality",
			ReadingType:  "temperature",
			ReadingValue: pgtype.Float8{Float64: 180, Valid: true},
			Unit:         pgtype.Text{String: "C", Valid: true},
			ErrorReason:  core.ReasonOutOfRange,
		},
		{
			SensorID:    "Station_1",
			Location:    "Milan_AirQuality",
			ReadingType: "humidity",
			ErrorReason: core.ReasonMissingKeyField,
		},
	}

	if err := writeErrorsArtifact(path, rows); err != nil {
		t.Fatalf("writeErrorsArtifact() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "sensor_id,ts,location,reading_type,reading_value,unit,error_reason" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], core.ReasonOutOfRange) || !strings.Contains(lines[1], "180") {
		t.Errorf("row 1 = %q, want out_of_range with value", lines[1])
	}
	// Absent timestamp and value render as empty cells.
	if !strings.Contains(lines[2], ",,") || !strings.Contains(lines[2], core.ReasonMissingKeyField) {
		t.Errorf("row 2 = %q, want empty cells and missing_key_field", lines[2])
	}
}

func TestWriteFatalArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data__fatal.txt")
	cause := errors.New("load data.csv: parsing CSV: record on line 3: wrong number of fields")

	if err := writeFatalArtifact(path, cause); err != nil {
		t.Fatalf("writeFatalArtifact() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), cause.Error()) {
		t.Errorf("artifact = %q, want verbatim failure text", content)
	}
}
