package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/sensor-core/internal/sensor"
)

// Exit codes for the batch command.
const (
	ExitSuccess      = 0 // Every input was read (records may still have been skipped)
	ExitFailure      = 1 // At least one input could not be read
	ExitCommandError = 2 // Bad flags, bad config, or the store was unreachable
)

// Error codes reported in JSON output.
const (
	ErrCodeConfig     = "E001"
	ErrCodeConnection = "E002"
	ErrCodeInput      = "E003"
	ErrCodeGeneric    = "E999"
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an *ExitError, ExitSuccess for nil.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// FileResult is the outcome for one input.
type FileResult struct {
	Source string `json:"source"`
	sensor.BatchResult
	Error string `json:"error,omitempty"`
}

// Report summarises a batch run.
type Report struct {
	RunID string             `json:"run_id"`
	Files []FileResult       `json:"files"`
	Total sensor.BatchResult `json:"total"`
}

// Response is the JSON envelope written with --format json.
type Response struct {
	Status string        `json:"status"` // "ok" or "error"
	Data   *Report       `json:"data,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload describes a failed run in JSON output.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter writes reports as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Report writes the run summary. status is "error" when any input failed.
func (f *OutputFormatter) Report(r *Report) error {
	if f.Format == "json" {
		status := "ok"
		for _, file := range r.Files {
			if file.Error != "" {
				status = "error"
				break
			}
		}
		return json.NewEncoder(f.Writer).Encode(Response{Status: status, Data: r})
	}

	for _, file := range r.Files {
		if file.Error != "" {
			fmt.Fprintf(f.Writer, "%s: error: %s\n", file.Source, file.Error)
		}
		fmt.Fprintf(f.Writer, "%s: %s\n", file.Source, formatCounts(file.BatchResult))
	}
	fmt.Fprintf(f.Writer, "total: %s\n", formatCounts(r.Total))
	return nil
}

// Error writes a run-level failure.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ErrorPayload{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

func formatCounts(r sensor.BatchResult) string {
	return fmt.Sprintf("processed=%d skipped_malformed=%d skipped_failed=%d",
		r.Processed, r.SkippedMalformed, r.SkippedFailed)
}
