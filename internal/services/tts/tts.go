package tts

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

// runSpeech executes the text-to-speech command. Package-level variable so
// tests can substitute a fake.
var runSpeech = func(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// SetRunnerForTests overrides the speech command runner during tests.
func SetRunnerForTests(fn func(context.Context, string, []string) ([]byte, error)) func() {
	previous := runSpeech
	runSpeech = fn
	return func() {
		runSpeech = previous
	}
}

// Generator synthesizes one voice-over clip per poem line by shelling out to
// an external text-to-speech engine, rotating through the configured voices.
type Generator struct {
	command     string
	modelPath   string
	voicesPath  string
	voices      []string
	lineTimeout time.Duration
	rng         *rand.Rand
	logger      *slog.Logger
}

// NewGenerator builds a generator from configuration.
func NewGenerator(cfg config.TTS, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Command == "" {
		return nil, services.Wrap(services.ErrConfiguration, "audio", "new", "no speech command configured", nil)
	}
	if len(cfg.Voices) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "audio", "new", "no voices configured", nil)
	}
	return &Generator{
		command:     cfg.Command,
		modelPath:   cfg.ModelPath,
		voicesPath:  cfg.VoicesPath,
		voices:      cfg.Voices,
		lineTimeout: time.Duration(cfg.LineTimeoutSeconds) * time.Second,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      logger.With(logging.String(logging.FieldComponent, "audio")),
	}, nil
}

// GenerateAll writes one clip per line into audioDir using the fixed per-line
// naming. A line that produces no usable file fails the whole batch.
func (g *Generator) GenerateAll(ctx context.Context, lines []poem.Line, audioDir string) error {
	if len(lines) == 0 {
		return services.Wrap(services.ErrValidation, "audio", "generate", "no lines to voice", nil)
	}
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "audio", "generate", "create audio directory", err)
	}

	for _, line := range lines {
		outputPath := filepath.Join(audioDir, poem.AudioFileName(line.Index))
		voice := g.voices[g.rng.Intn(len(g.voices))]

		g.logger.InfoContext(ctx, "voicing line",
			logging.Int(logging.FieldLineIndex, line.Index),
			logging.String("voice", voice))

		if err := g.generateLine(ctx, line, voice, outputPath); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateLine(ctx context.Context, line poem.Line, voice, outputPath string) error {
	lineCtx := ctx
	if g.lineTimeout > 0 {
		var cancel context.CancelFunc
		lineCtx, cancel = context.WithTimeout(ctx, g.lineTimeout)
		defer cancel()
	}

	output, err := runSpeech(lineCtx, g.command, g.commandArgs(voice, line.Comment.Text, outputPath))
	if err != nil {
		if lineCtx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "audio", "generate",
				fmt.Sprintf("line %d timed out", line.Index), nil)
		}
		return services.Wrap(services.ErrExternalTool, "audio", "generate",
			fmt.Sprintf("line %d: %s", line.Index, firstLine(output)), err)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "audio", "generate",
			fmt.Sprintf("line %d produced no audio", line.Index), nil)
	}
	return nil
}

func (g *Generator) commandArgs(voice, text, outputPath string) []string {
	args := []string{}
	if g.modelPath != "" {
		args = append(args, "--model", g.modelPath)
	}
	if g.voicesPath != "" {
		args = append(args, "--voices", g.voicesPath)
	}
	args = append(args, "--voice", voice, "--output", outputPath, text)
	return args
}

func firstLine(output []byte) string {
	for i, b := range output {
		if b == '\n' {
			return string(output[:i])
		}
	}
	return string(output)
}
