package render

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sundai-club/reddit-rhymes/internal/compositor"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/media/ffprobe"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

const diagnosticLines = 12

// runEncoder executes the encoder process and returns its combined output.
// Package-level variable so tests can substitute a fake.
var runEncoder = func(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// probeOutput inspects the finished file. Package-level variable so tests can
// substitute a fake.
var probeOutput = ffprobe.Inspect

// SetRunnerForTests overrides the encoder runner during tests.
func SetRunnerForTests(fn func(context.Context, string, []string) ([]byte, error)) func() {
	previous := runEncoder
	runEncoder = fn
	return func() {
		runEncoder = previous
	}
}

// SetProbeForTests overrides the output prober during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := probeOutput
	probeOutput = fn
	return func() {
		probeOutput = previous
	}
}

// Result describes a completed, validated render.
type Result struct {
	OutputPath string
	Duration   float64
	SizeBytes  int64
	Elapsed    time.Duration
}

// Driver runs render jobs against a local ffmpeg install.
type Driver struct {
	ffmpegBinary      string
	ffprobeBinary     string
	timeout           time.Duration
	durationTolerance float64
	logger            *slog.Logger
}

// NewDriver builds a render driver. A zero timeout means no wall clock limit;
// a zero tolerance falls back to half a second.
func NewDriver(ffmpegBinary, ffprobeBinary string, timeout time.Duration, durationTolerance float64, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if durationTolerance <= 0 {
		durationTolerance = 0.5
	}
	return &Driver{
		ffmpegBinary:      ffmpegBinary,
		ffprobeBinary:     ffprobeBinary,
		timeout:           timeout,
		durationTolerance: durationTolerance,
		logger:            logger.With(logging.String(logging.FieldComponent, "render")),
	}
}

// Render executes the job and validates the produced file. On any failure the
// partially written output is removed best-effort so a bad file is never left
// behind at the destination.
func (d *Driver) Render(ctx context.Context, job compositor.Job) (Result, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	args := job.CommandArgs()
	d.logger.InfoContext(ctx, "starting encode",
		logging.String("output", job.OutputPath),
		logging.Float64("duration_seconds", job.Duration),
		logging.Int("inputs", len(job.Inputs)))

	started := time.Now()
	output, err := runEncoder(ctx, d.ffmpegBinary, args)
	elapsed := time.Since(started)
	if err != nil {
		d.discardOutput(job.OutputPath)
		if ctx.Err() == context.DeadlineExceeded {
			d.logger.ErrorContext(ctx, "encode timed out",
				logging.Duration("elapsed", elapsed),
				logging.Duration("budget", d.timeout))
			return Result{}, services.Wrap(services.ErrTimeout, "render", "encode", "", ErrEncodeTimeout)
		}
		encodeErr := &EncodeError{ExitCode: exitCode(err), Diagnostic: tailLines(output, diagnosticLines)}
		d.logger.ErrorContext(ctx, "encode failed",
			logging.Int("exit_code", encodeErr.ExitCode),
			logging.Duration("elapsed", elapsed))
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "encode", "", encodeErr)
	}

	result, err := d.validate(ctx, job)
	if err != nil {
		d.discardOutput(job.OutputPath)
		return Result{}, err
	}
	result.Elapsed = elapsed

	d.logger.InfoContext(ctx, "encode complete",
		logging.String("output", result.OutputPath),
		logging.Float64("duration_seconds", result.Duration),
		logging.Int("size_bytes", int(result.SizeBytes)),
		logging.Duration("elapsed", elapsed))
	return result, nil
}

func (d *Driver) validate(ctx context.Context, job compositor.Job) (Result, error) {
	info, err := os.Stat(job.OutputPath)
	if err != nil || info.Size() == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate", "",
			&OutputValidationError{Path: job.OutputPath, Reason: "missing or empty file"})
	}

	probed, err := probeOutput(ctx, d.ffprobeBinary, job.OutputPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate", "",
			&OutputValidationError{Path: job.OutputPath, Reason: "unreadable container"})
	}
	if probed.VideoStreamCount() == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate", "",
			&OutputValidationError{Path: job.OutputPath, Reason: "no video stream"})
	}
	if probed.AudioStreamCount() == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate", "",
			&OutputValidationError{Path: job.OutputPath, Reason: "no audio stream"})
	}
	duration := probed.DurationSeconds()
	if drift := math.Abs(duration - job.Duration); drift > d.durationTolerance {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate", "",
			&OutputValidationError{
				Path:   job.OutputPath,
				Reason: "duration drifted beyond tolerance",
			})
	}
	return Result{OutputPath: job.OutputPath, Duration: duration, SizeBytes: info.Size()}, nil
}

func (d *Driver) discardOutput(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("could not remove partial output",
			logging.String("path", path),
			logging.Error(err))
	}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// tailLines keeps the last n non-empty lines of encoder output.
func tailLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
