package llm

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

// Composer arranges fetched comments into a rhyming poem using a chat model,
// with an algorithmic rhyme matcher as fallback when the model response is
// unusable.
type Composer struct {
	complete   func(ctx context.Context, prompt string) (string, error)
	model      string
	minLines   int
	maxLines   int
	sampleSize int
	timeout    time.Duration
	rng        *rand.Rand
	logger     *slog.Logger
}

// NewComposer builds a composer from configuration.
func NewComposer(cfg config.LLM, logger *slog.Logger) (*Composer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "compose", "new", "missing API key", nil)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	composer := &Composer{
		model:      cfg.Model,
		minLines:   cfg.MinLines,
		maxLines:   cfg.MaxLines,
		sampleSize: cfg.SampleSize,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logger.With(logging.String(logging.FieldComponent, "compose")),
	}
	composer.complete = func(ctx context.Context, prompt string) (string, error) {
		completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: openai.ChatModel(composer.model),
		})
		if err != nil {
			return "", err
		}
		if len(completion.Choices) == 0 {
			return "", services.Wrap(services.ErrTransient, "compose", "complete", "empty completion", nil)
		}
		return completion.Choices[0].Message.Content, nil
	}
	return composer, nil
}

// SetCompleteForTests overrides the model call during tests.
func (c *Composer) SetCompleteForTests(fn func(context.Context, string) (string, error)) {
	c.complete = fn
}

// Compose selects and orders poem lines from the fetched comments. The model
// picks lines by number from a random sample; selections that cannot be
// verified against the sample are discarded. When fewer than the minimum
// usable lines come back, the rhyme matcher arranges the sample instead.
func (c *Composer) Compose(ctx context.Context, comments []poem.Comment) ([]poem.Comment, error) {
	if len(comments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "compose", "compose", "no comments to compose from", nil)
	}

	sample := c.sampleComments(comments)
	prompt := BuildPrompt(sample)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	selected, err := c.modelSelection(ctx, prompt, sample)
	if err != nil {
		c.logger.WarnContext(ctx, "model selection failed, using rhyme matcher", logging.Error(err))
		selected = nil
	}
	if len(selected) < c.minLines {
		c.logger.InfoContext(ctx, "falling back to rhyme matcher",
			logging.Int("model_lines", len(selected)),
			logging.Int("min_lines", c.minLines))
		selected = FallbackSelection(sample, c.minLines, c.maxLines)
	}
	if len(selected) > c.maxLines {
		selected = selected[:c.maxLines]
	}
	if len(selected) == 0 {
		return nil, services.Wrap(services.ErrValidation, "compose", "compose", "could not assemble a poem", nil)
	}

	c.logger.InfoContext(ctx, "poem composed", logging.Int("lines", len(selected)))
	return selected, nil
}

func (c *Composer) modelSelection(ctx context.Context, prompt string, sample []poem.Comment) ([]poem.Comment, error) {
	response, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "compose", "complete", "", err)
	}
	return ParseSelection(response, sample), nil
}

func (c *Composer) sampleComments(comments []poem.Comment) []poem.Comment {
	size := c.sampleSize
	if size <= 0 || size > len(comments) {
		size = len(comments)
	}
	sample := make([]poem.Comment, len(comments))
	copy(sample, comments)
	c.rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	return sample[:size]
}
