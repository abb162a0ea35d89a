package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ExtractCommand is the hidden CLI command that runs RunExtractWorker.
const ExtractCommand = "extract-worker"

const (
	DefaultExtractTimeout  = 60 * time.Second
	DefaultExtractMaxBytes = 50 * 1024 * 1024
)

// ExtractionError reports a document that could not be turned into text.
type ExtractionError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction of %s failed: %s: %v", e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction of %s failed: %s", e.FileName, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor runs text extraction in a child process, one process per
// document, so a parser crash or hang never reaches the server.
type Extractor struct {
	// Path and Args start the child; by default the running binary with ExtractCommand.
	Path     string
	Args     []string
	Env      []string
	Timeout  time.Duration
	MaxBytes int64

	logger *slog.Logger
}

// NewExtractor re-executes the current binary as the extraction child.
func NewExtractor(timeout time.Duration, maxBytes int64) (*Extractor, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &Extractor{
		Path:     exe,
		Args:     []string{ExtractCommand},
		Timeout:  timeout,
		MaxBytes: maxBytes,
	}, nil
}

func (e *Extractor) log() *slog.Logger {
	if e.logger == nil {
		e.logger = slog.Default().With("component", "extractor")
	}
	return e.logger
}

// Extract returns the plain text of the document or an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	maxBytes := e.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultExtractMaxBytes
	}
	if int64(len(data)) > maxBytes {
		return "", &ExtractionError{FileName: fileName, Reason: fmt.Sprintf("file exceeds %d bytes", maxBytes)}
	}
	if !SupportedExtension(fileName) {
		return "", &ExtractionError{FileName: fileName, Reason: "unsupported format", Err: ErrUnsupportedFormat}
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(extractRequest{FileName: fileName, Data: data})
	if err != nil {
		return "", &ExtractionError{FileName: fileName, Reason: "encode request", Err: err}
	}

	cmd := exec.CommandContext(ctx, e.Path, e.Args...)
	cmd.Env = append(os.Environ(), e.Env...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return "", &ExtractionError{FileName: fileName, Reason: "timed out or cancelled", Err: ctx.Err()}
	}
	if runErr != nil {
		e.log().Warn("extraction process failed", "file", fileName, "err", runErr, "stderr", tail(stderr.String(), 500))
		return "", &ExtractionError{FileName: fileName, Reason: "extraction process crashed", Err: runErr}
	}

	var resp extractResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return "", &ExtractionError{FileName: fileName, Reason: "invalid worker response", Err: err}
	}
	if resp.Error != "" {
		return "", &ExtractionError{FileName: fileName, Reason: "unparseable document", Err: errors.New(resp.Error)}
	}

	e.log().Debug("document extracted", "file", fileName, "bytes", len(data), "chars", len(resp.Text), "elapsed", time.Since(started))
	return resp.Text, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
