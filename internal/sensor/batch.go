package sensor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxLineSize bounds a single NDJSON record.
const maxLineSize = 1 << 20

// payload is the wire form of a reading. Pointers distinguish absent
// fields from zero values.
type payload struct {
	Gas  *float64  `json:"gas"`
	Fire *fireFlag `json:"fire"`
	Time *string   `json:"time"`
}

// fireFlag accepts the fire flag as a JSON boolean or as a whole number.
// true and false map to 1 and 0; 1.0 is read as 1.
type fireFlag int

func (f *fireFlag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*f = 1
		return nil
	case "false":
		*f = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("fire must be a boolean or an integer, got %s", data)
	}
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return fmt.Errorf("fire must be a whole number, got %s", data)
	}
	*f = fireFlag(n)
	return nil
}

// record is one line of a batch file.
type record struct {
	ID *string `json:"id"`
	payload
}

func (p payload) reading() (Reading, error) {
	if p.Gas == nil {
		return Reading{}, fmt.Errorf("%w: missing gas", ErrMalformedRecord)
	}
	if p.Fire == nil {
		return Reading{}, fmt.Errorf("%w: missing fire", ErrMalformedRecord)
	}

	r := Reading{Gas: *p.Gas, Fire: int(*p.Fire)}
	if p.Time != nil && *p.Time != "" {
		t, err := parseTimestamp(*p.Time)
		if err != nil {
			return Reading{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		r.Time = t
	}
	return r, nil
}

// ParseReading decodes a JSON reading body {"gas", "fire", "time"?}.
//
// A missing time leaves Reading.Time zero so that ingestion stamps it.
// Returns ErrMalformedRecord on any decoding or field error.
func ParseReading(data []byte) (Reading, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return p.reading()
}

// ParseRecord decodes one batch line {"id", "gas", "fire", "time"?}.
//
// The ID is returned as given; it is validated at ingestion.
func ParseRecord(line []byte) (string, Reading, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return "", Reading{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if rec.ID == nil || *rec.ID == "" {
		return "", Reading{}, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	r, err := rec.reading()
	if err != nil {
		return "", Reading{}, err
	}
	return *rec.ID, r, nil
}

// IngestNDJSON feeds newline-delimited JSON records from r into ing.
//
// Each line is handled on its own: malformed lines and failed ingests are
// logged, counted and skipped, and processing continues. Blank lines are
// ignored. The error return is reserved for failures reading r and for
// context cancellation, in which case the counts so far are still returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ing: Destination for readings (normally *Store)
//   - r: NDJSON source
//   - logger: Receives one warning per skipped line (may be nil)
//
// Returns:
//   - BatchResult: Processed, malformed and failed counts
//   - error: Reader or context error
func IngestNDJSON(ctx context.Context, ing Ingester, r io.Reader, logger Logger) (BatchResult, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	var result BatchResult
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return result, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		id, reading, err := ParseRecord(line)
		if err != nil {
			result.SkippedMalformed++
			logger.Warn("skipping malformed record", "line", lineNo, "error", err)
			continue
		}

		if err := ing.Ingest(ctx, id, reading); err != nil {
			result.SkippedFailed++
			logger.Warn("skipping record that failed to ingest",
				"line", lineNo,
				"sensor_id", id,
				"error", err,
			)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			continue
		}
		result.Processed++
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("reading batch input: %w", err)
	}
	return result, nil
}
