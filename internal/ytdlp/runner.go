// Package ytdlp orchestrates the external extraction tool. Every lookup
// is one subprocess invocation producing a single JSON document; auth
// material is written to a short-lived temp file that is always removed,
// pass or fail.
package ytdlp

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

	"tubio/internal/logging"
)

// FirstOnly restricts an invocation to the first playlist entry.
const FirstOnly = ":1"

// pageSize is the number of entries fetched per catalog page.
const pageSize = 100

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithTempDir overrides where credential temp files are written.
func WithTempDir(dir string) Option {
	return func(r *Runner) {
		if dir != "" {
			r.namer = NewTempNamer(dir)
		}
	}
}

// Runner invokes the extraction tool.
type Runner struct {
	binary     string
	extractors string
	timeout    time.Duration
	exec       Executor
	namer      *TempNamer
	logger     *slog.Logger
}

// New constructs a runner. The extractor allowlist defaults to "all".
func New(binary, extractors string, timeoutSeconds int, logger *slog.Logger, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if strings.TrimSpace(extractors) == "" {
		extractors = "all"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{
		binary:     binary,
		extractors: extractors,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		exec:       commandExecutor{},
		namer:      NewTempNamer(os.TempDir()),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// IndexRange builds the one-based entry range for a catalog page.
// Reversed ranges walk the playlist from the end with a negative step.
func IndexRange(skip int, reversed bool) string {
	if reversed {
		return fmt.Sprintf("%d:%d:-1", -(skip + 1), -(skip + pageSize))
	}
	return fmt.Sprintf("%d:%d:1", skip+1, skip+pageSize)
}

// Invoke runs one extraction. Per-call args (index range, playlist mode,
// the lookup spec) come first; the baseline flags shared by every call
// follow. A non-empty auth blob is written to a temp cookie file passed
// via --cookies and deleted before Invoke returns, even on failure.
func (r *Runner) Invoke(ctx context.Context, auth string, args []string) (*Record, error) {
	cookieFile := ""
	if auth != "" {
		cookieFile = r.namer.Next()
		if err := os.WriteFile(cookieFile, []byte(auth), 0o600); err != nil {
			return nil, fmt.Errorf("write cookie file: %w", err)
		}
		defer func() {
			if err := os.Remove(cookieFile); err != nil {
				r.logger.Error("credential temp file not removed",
					logging.String("path", cookieFile), logging.Error(err))
			}
		}()
	}

	full := append([]string{}, args...)
	full = append(full,
		"-i",
		"--no-plugin-dirs",
		"--flat-playlist",
		"--no-cache-dir",
		"--no-warnings",
		"--ignore-no-formats-error",
		"-J",
		"--ies", r.extractors,
		"--extractor-args", "generic:impersonate",
		"--compat-options", "no-youtube-channel-redirect",
	)
	if cookieFile != "" {
		full = append(full, "--cookies", cookieFile)
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.exec.Run(runCtx, r.binary, full)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	var record Record
	if err := json.Unmarshal(bytes.TrimSpace(out), &record); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &record, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		// Diagnostics often span several lines; keep all of them.
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
