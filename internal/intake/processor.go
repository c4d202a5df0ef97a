// Package intake drives files through the pipeline: it polls the incoming
// directory, runs each file through loading, validation, aggregation and
// persistence, and performs exactly one terminal filesystem action per
// file: a move to processed/ on success, or to quarantine/ plus a
// diagnostic artifact on failure.
package intake

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/sensorpipe/internal/config"
	"github.com/JonMunkholm/sensorpipe/internal/core"
	"github.com/JonMunkholm/sensorpipe/internal/logging"
	"github.com/JonMunkholm/sensorpipe/internal/metrics"
	"github.com/google/uuid"
)

// Gateway is the persistence surface the processor needs. Both operations
// accept empty input as a no-op and return the number of rows written.
// *store.Store implements it with retried, idempotent writes.
type Gateway interface {
	InsertRawReadings(ctx context.Context, rows []core.RawReading) (int64, error)
	UpsertFileAggregates(ctx context.Context, rows []core.FileAggregate) (int64, error)
}

// Outcome is the terminal state a file reached.
type Outcome int

const (
	// OutcomeProcessed: every row valid, persisted, file in processed/.
	OutcomeProcessed Outcome = iota
	// OutcomeQuarantinedInvalid: at least one invalid row; file in
	// quarantine/ with an __errors.csv sibling, store untouched.
	OutcomeQuarantinedInvalid
	// OutcomeQuarantinedFatal: unexpected failure while loading or
	// persisting; file in quarantine/ with a __fatal.txt sibling.
	OutcomeQuarantinedFatal
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeQuarantinedInvalid:
		return "quarantined-invalid"
	case OutcomeQuarantinedFatal:
		return "quarantined-fatal"
	default:
		return "unknown"
	}
}

// Processor runs one file at a time through the pipeline. It owns every
// file lifecycle transition; the core packages it calls are pure.
type Processor struct {
	gateway      Gateway
	rules        core.Rules
	source       string
	processedDir string
	quarantine   string
	keepIncoming bool
}

// NewProcessor wires a processor from the validated configuration.
func NewProcessor(gateway Gateway, cfg *config.Config) *Processor {
	return &Processor{
		gateway: gateway,
		rules: core.Rules{
			DefaultSensorID: cfg.Pipeline.DefaultSensorID,
			DefaultLocation: cfg.Pipeline.DefaultLocation,
			TempMinC:        cfg.Pipeline.TempMinC,
			TempMaxC:        cfg.Pipeline.TempMaxC,
			RHMin:           cfg.Pipeline.RHMin,
			RHMax:           cfg.Pipeline.RHMax,
		},
		source:       cfg.Pipeline.SourceName,
		processedDir: cfg.Intake.ProcessedDir(),
		quarantine:   cfg.Intake.QuarantineDir(),
		keepIncoming: cfg.Intake.KeepIncoming,
	}
}

// ProcessFile drives one file to a terminal state. It never returns an
// error: failures are absorbed into the quarantine transitions and logged,
// so a bad file cannot abort the poll loop.
//
// Commit is all-or-nothing per file: a single invalid row quarantines the
// whole file and the store is never called for it.
func (p *Processor) ProcessFile(ctx context.Context, path string) Outcome {
	start := time.Now()
	fileName := baseName(path)
	logger := logging.WithFields(ctx,
		"intake_id", uuid.NewString(),
		"file", fileName,
	)
	logger.Info("processing file")

	frame, err := core.LoadFrame(path)
	if err != nil {
		return p.quarantineFatal(logger, path, err)
	}

	valid, invalid := core.ValidateTransform(frame, p.rules)

	if len(invalid) > 0 {
		dest, err := moveFile(path, p.quarantine)
		if err != nil {
			logger.Error("quarantine move failed", "error", err)
			metrics.ProcessErrors.Inc()
			return OutcomeQuarantinedFatal
		}
		if err := writeErrorsArtifact(artifactPath(dest, "__errors.csv"), invalid); err != nil {
			logger.Error("writing errors artifact failed", "error", err)
		}
		metrics.FilesQuarantined.WithLabelValues("invalid").Inc()
		logger.Warn("file quarantined: invalid rows",
			"rows_valid", len(valid),
			"rows_invalid", len(invalid),
			"quarantined_as", baseName(dest),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return OutcomeQuarantinedInvalid
	}

	rows := core.BuildRawReadings(valid, fileName, p.source)
	aggregates := core.ComputeAggregates(valid, fileName, p.source)

	inserted, err := p.gateway.InsertRawReadings(ctx, rows)
	if err != nil {
		return p.quarantineFatal(logger, path, err)
	}
	metrics.RawRowsInserted.Add(float64(inserted))

	written, err := p.gateway.UpsertFileAggregates(ctx, aggregates)
	if err != nil {
		return p.quarantineFatal(logger, path, err)
	}
	metrics.AggRowsInserted.Add(float64(written))

	var dest string
	if p.keepIncoming {
		dest, err = copyFile(path, p.processedDir)
		if err == nil {
			err = writeDoneMarker(path)
		}
	} else {
		dest, err = moveFile(path, p.processedDir)
	}
	if err != nil {
		return p.quarantineFatal(logger, path, err)
	}

	metrics.FilesProcessed.Inc()
	logger.Info("file processed",
		"rows_valid", len(valid),
		"rows_inserted", inserted,
		"aggregates", len(aggregates),
		"processed_as", baseName(dest),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return OutcomeProcessed
}

// quarantineFatal moves the file to quarantine with a __fatal.txt sibling
// carrying the failure text verbatim. Partial progress is irrelevant here:
// raw-reading inserts are dedupe-keyed and aggregate inserts are upserts,
// so resubmitting the same content later is safe.
func (p *Processor) quarantineFatal(logger *slog.Logger, path string, cause error) Outcome {
	metrics.ProcessErrors.Inc()

	dest, err := moveFile(path, p.quarantine)
	if err != nil {
		logger.Error("quarantine move failed", "cause", cause, "error", err)
		return OutcomeQuarantinedFatal
	}
	if err := writeFatalArtifact(artifactPath(dest, "__fatal.txt"), cause); err != nil {
		logger.Error("writing fatal artifact failed", "error", err)
	}
	metrics.FilesQuarantined.WithLabelValues("fatal").Inc()
	logger.Error("file quarantined: fatal error",
		"error", cause,
		"quarantined_as", baseName(dest),
	)
	return OutcomeQuarantinedFatal
}
