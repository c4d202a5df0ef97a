package intake

// files.go implements the filesystem side effects of the intake state
// machine: collision-safe moves into the terminal directories and the
// diagnostic artifacts written next to quarantined files.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JonMunkholm/sensorpipe/internal/core"
)

// doneMarkerSuffix marks a file in incoming/ as already ingested when
// keep-incoming mode is on. Scans skip files with this sibling.
const doneMarkerSuffix = ".done"

// baseName is filepath.Base, named for what it means here: the file name
// that identifies a reading's source file in the store.
func baseName(path string) string {
	return filepath.Base(path)
}

// uniqueDest returns a path in destDir that does not exist yet, appending
// __1, __2, ... before the extension on collision. Existing files are never
// overwritten.
func uniqueDest(destDir, name string) string {
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for i := 1; ; i++ {
		dest = filepath.Join(destDir, fmt.Sprintf("%s__%d%s", stem, i, ext))
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest
		}
	}
}

// moveFile moves src into destDir under a collision-safe name and returns
// the destination path. Falls back to copy+remove when rename fails (for
// example across filesystems).
func moveFile(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", destDir, err)
	}

	dest := uniqueDest(destDir, filepath.Base(src))
	if err := os.Rename(src, dest); err == nil {
		return dest, nil
	}

	if err := copyContents(src, dest); err != nil {
		return "", fmt.Errorf("moving %s: %w", filepath.Base(src), err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("removing %s after copy: %w", filepath.Base(src), err)
	}
	return dest, nil
}

// copyFile copies src into destDir under a collision-safe name, leaving the
// source in place. Used by keep-incoming mode.
func copyFile(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", destDir, err)
	}

	dest := uniqueDest(destDir, filepath.Base(src))
	if err := copyContents(src, dest); err != nil {
		return "", fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	return dest, nil
}

func copyContents(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}

// writeDoneMarker creates the .done sibling for a processed file left in
// incoming/.
func writeDoneMarker(src string) error {
	marker := src + doneMarkerSuffix
	return os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0644)
}

// hasDoneMarker reports whether src has already been ingested in
// keep-incoming mode.
func hasDoneMarker(src string) bool {
	_, err := os.Stat(src + doneMarkerSuffix)
	return err == nil
}

// artifactPath derives a diagnostic artifact path from a quarantined file's
// final (possibly suffixed) location: the extension is replaced by the
// given suffix, so "bad.csv" gets "bad__errors.csv" as a sibling.
func artifactPath(quarantined, suffix string) string {
	ext := filepath.Ext(quarantined)
	return quarantined[:len(quarantined)-len(ext)] + suffix
}

// writeErrorsArtifact writes the invalid rows of a quarantined file as a
// plain comma-separated CSV next to it.
func writeErrorsArtifact(path string, rows []core.InvalidRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating errors artifact: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{"sensor_id", "ts", "location", "reading_type", "reading_value", "unit", "error_reason"}
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		var ts, value, unit string
		if r.Ts.Valid {
			ts = r.Ts.Time.UTC().Format(time.RFC3339)
		}
		if r.ReadingValue.Valid {
			value = strconv.FormatFloat(r.ReadingValue.Float64, 'g', -1, 64)
		}
		if r.Unit.Valid {
			unit = r.Unit.String
		}
		record := []string{r.SensorID, ts, r.Location, r.ReadingType, value, unit, r.ErrorReason}
		if err := w.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeFatalArtifact captures a fatal failure's description verbatim next
// to the quarantined file.
func writeFatalArtifact(path string, failure error) error {
	return os.WriteFile(path, []byte(failure.Error()+"\n"), 0644)
}
