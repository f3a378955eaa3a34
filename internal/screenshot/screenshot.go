package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

// Dark theme card palette, hex RGBA for ffmpeg color syntax.
const (
	cardBackground = "0x1a1a1bfa"
	textColor      = "0xd7dadc"
	secondaryColor = "0x818384"
	upvoteColor    = "0xff4500"

	cardWidth     = 900
	cardPadding   = 40
	headerHeight  = 48
	lineHeight    = 56
	footerHeight  = 44
	bodyFontSize  = 42
	smallFontSize = 26
	nameFontSize  = 32
	wrapColumns   = 38
)

// runRender executes the card render command. Package-level variable so tests
// can substitute a fake.
var runRender = func(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// SetRunnerForTests overrides the render command runner during tests.
func SetRunnerForTests(fn func(context.Context, string, []string) ([]byte, error)) func() {
	previous := runRender
	runRender = fn
	return func() {
		runRender = previous
	}
}

// Renderer draws one transparent comment card per poem line using ffmpeg's
// lavfi source and drawtext, so no image library is needed beyond the encoder
// already required by the pipeline.
type Renderer struct {
	ffmpegBinary string
	fontFile     string
	logger       *slog.Logger
}

// NewRenderer builds a card renderer. An empty fontFile leaves font selection
// to the system fontconfig.
func NewRenderer(ffmpegBinary, fontFile string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		ffmpegBinary: ffmpegBinary,
		fontFile:     fontFile,
		logger:       logger.With(logging.String(logging.FieldComponent, "screenshots")),
	}
}

// RenderAll writes one card per line into imagesDir using the fixed per-line
// naming.
func (r *Renderer) RenderAll(ctx context.Context, lines []poem.Line, imagesDir string) error {
	if len(lines) == 0 {
		return services.Wrap(services.ErrValidation, "screenshots", "render", "no lines to render", nil)
	}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "screenshots", "render", "create images directory", err)
	}

	for _, line := range lines {
		outputPath := filepath.Join(imagesDir, poem.ImageFileName(line.Index))
		r.logger.InfoContext(ctx, "rendering card",
			logging.Int(logging.FieldLineIndex, line.Index),
			logging.String("author", line.Comment.Author))

		output, err := runRender(ctx, r.ffmpegBinary, r.commandArgs(line, outputPath))
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "screenshots", "render",
				fmt.Sprintf("line %d: %s", line.Index, firstLine(output)), err)
		}
		info, statErr := os.Stat(outputPath)
		if statErr != nil || info.Size() == 0 {
			return services.Wrap(services.ErrExternalTool, "screenshots", "render",
				fmt.Sprintf("line %d produced no image", line.Index), nil)
		}
	}
	return nil
}

func (r *Renderer) commandArgs(line poem.Line, outputPath string) []string {
	filter, height := r.buildFilter(line)
	return []string{
		"-y", "-hide_banner",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x00000000:s=%dx%d,format=rgba", cardWidth, height),
		"-vf", filter,
		"-frames:v", "1",
		outputPath,
	}
}

// buildFilter draws the card: a translucent dark box, the author line, the
// wrapped comment body, and the upvote count.
func (r *Renderer) buildFilter(line poem.Line) (string, int) {
	body := wrapText(line.Comment.Text, wrapColumns)
	height := 2*cardPadding + headerHeight + len(body)*lineHeight + footerHeight

	var filter strings.Builder
	fmt.Fprintf(&filter, "drawbox=x=0:y=0:w=%d:h=%d:color=%s:t=fill", cardWidth, height, cardBackground)

	author := line.Comment.Author
	if author == "" {
		author = "redditor"
	}
	filter.WriteString(r.drawText("u/"+author, cardPadding, cardPadding, nameFontSize, secondaryColor))

	y := cardPadding + headerHeight
	for _, textLine := range body {
		filter.WriteString(r.drawText(textLine, cardPadding, y, bodyFontSize, textColor))
		y += lineHeight
	}

	upvotes := fmt.Sprintf("^ %d", line.Comment.Upvotes)
	filter.WriteString(r.drawText(upvotes, cardPadding, y+8, smallFontSize, upvoteColor))

	return filter.String(), height
}

func (r *Renderer) drawText(text string, x, y, size int, color string) string {
	var b strings.Builder
	b.WriteString(",drawtext=")
	if r.fontFile != "" {
		fmt.Fprintf(&b, "fontfile=%s:", escapeFilterValue(r.fontFile))
	}
	fmt.Fprintf(&b, "text='%s':x=%d:y=%d:fontsize=%d:fontcolor=%s",
		escapeFilterValue(text), x, y, size, color)
	return b.String()
}

// escapeFilterValue escapes characters that terminate or alter drawtext
// values inside a filtergraph.
func escapeFilterValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return replacer.Replace(value)
}

// wrapText splits text into lines of at most columns characters, breaking on
// word boundaries. Words longer than a full line stand alone.
func wrapText(text string, columns int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > columns {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}

func firstLine(output []byte) string {
	for i, b := range output {
		if b == '\n' {
			return string(output[:i])
		}
	}
	return string(output)
}
