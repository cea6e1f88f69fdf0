package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/tartampluch/go-ivu-ics/internal/schedule"
)

// ErrUsage marks operator mistakes: bad arguments or an unparsable month.
// Callers print the usage message and exit without writing anything.
var ErrUsage = errors.New(config.ErrUsage)

// ConvertConfig contains all parameters required to perform a conversion.
type ConvertConfig struct {
	Inputs  []string // Local paths or http(s) URLs of schedule pages
	Month   string   // Optional month filter, e.g. "2024-03"
	WebUser string   // HTTP Basic Auth Username for remote inputs
	WebPass string   // HTTP Basic Auth Password for remote inputs
}

// Generator is the core service converting schedule pages into a calendar.
type Generator struct {
	Clock     Clock               // Interface for time mocking.
	Fetcher   DocumentFetcher     // Interface for network abstraction.
	Extractor *schedule.Extractor // HTML-to-event extraction.

	// CalendarName is written as X-WR-CALNAME.
	CalendarName string
}

// RunConvert executes the read, extract, filter and encode pipeline.
// It returns the ICS data and the number of events it holds.
func (g *Generator) RunConvert(ctx context.Context, cfg ConvertConfig) ([]byte, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyInputs, len(cfg.Inputs),
	)
	log.InfoContext(ctx, config.MsgConvertStarted)

	// 1. Validate the month before touching any input.
	var span *MonthSpan
	if cfg.Month != "" {
		s, err := ParseMonth(cfg.Month, g.Extractor.Location)
		if err != nil {
			return nil, 0, err
		}
		span = &s
	}

	// 2. Read every document fully.
	docs, err := g.readAll(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, err
	}

	// 3. Extract
	readers := make([]io.Reader, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	events, err := g.Extractor.Extract(ctx, readers...)
	if err != nil {
		return nil, 0, err
	}

	// 4. Filter
	if span != nil {
		events = FilterMonth(events, *span)
	}

	// 5. Encode
	ics, err := EncodeCalendar(events, CalendarMeta{
		Name:     g.CalendarName,
		Timezone: g.Extractor.Location.String(),
		Stamp:    g.Clock.Now(),
	})
	if err != nil {
		return nil, 0, err
	}

	log.Info(config.MsgGenSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvents, events.Len()),
			slog.Int(config.LogKeySizeBytes, len(ics)),
		),
	)
	log.Debug(config.MsgConvertDone, config.LogKeyDuration, time.Since(start).Milliseconds())
	return ics, events.Len(), nil
}

// readAll loads every input into memory, in argument order.
func (g *Generator) readAll(ctx context.Context, cfg ConvertConfig) ([][]byte, error) {
	docs := make([][]byte, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := g.readOne(ctx, in, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", config.ErrInputRead, in, err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

func (g *Generator) readOne(ctx context.Context, input string, cfg ConvertConfig) ([]byte, error) {
	if input == "" {
		return nil, errors.New(config.ErrInputEmpty)
	}
	if !IsRemote(input) {
		return os.ReadFile(input)
	}
	if g.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}

	rc, err := g.Fetcher.Fetch(ctx, input, cfg.WebUser, cfg.WebPass)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// WriteCalendar writes data to path atomically: a temp file in the same
// directory is renamed over the target, so a failed run leaves no partial file.
func WriteCalendar(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, config.TempFilePattern)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	tmpName := tmp.Name()
	// No-op once the rename succeeded.
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	if err := os.Chmod(tmpName, config.FilePermCalendar); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}

	slog.Info(config.MsgFileWritten,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}
