package reddit

import (
	"context"
	"fmt"
	"log/slog"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

const (
	userAgent       = "rhymes/1.0 (poem comment fetcher)"
	postsPerListing = 25
	timeLayout      = "2006-01-02 15:04:05"
)

// Fetcher pulls recent comments from configured subreddits and keeps only
// those usable as poem lines.
type Fetcher struct {
	client     *goreddit.Client
	subreddits []string
	fetchLimit int
	logger     *slog.Logger
}

// NewFetcher builds a fetcher from configuration. Without full script-app
// credentials it falls back to Reddit's read-only API.
func NewFetcher(cfg config.Reddit, logger *slog.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(cfg.Subreddits) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "new", "no subreddits configured", nil)
	}

	var (
		client *goreddit.Client
		err    error
	)
	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.Username != "" && cfg.Password != "" {
		client, err = goreddit.NewClient(goreddit.Credentials{
			ID:       cfg.ClientID,
			Secret:   cfg.ClientSecret,
			Username: cfg.Username,
			Password: cfg.Password,
		}, goreddit.WithUserAgent(userAgent))
	} else {
		client, err = goreddit.NewReadonlyClient(goreddit.WithUserAgent(userAgent))
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "new", "create reddit client", err)
	}

	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = 1000
	}
	return &Fetcher{
		client:     client,
		subreddits: cfg.Subreddits,
		fetchLimit: limit,
		logger:     logger.With(logging.String(logging.FieldComponent, "fetch")),
	}, nil
}

// Fetch collects poetic comments across all configured subreddits, up to the
// configured total. Comments that fail the line filter are dropped; duplicate
// bodies are kept once.
func (f *Fetcher) Fetch(ctx context.Context) ([]poem.Comment, error) {
	collected := make([]poem.Comment, 0, f.fetchLimit)
	seen := make(map[string]struct{})

	for _, subreddit := range f.subreddits {
		if len(collected) >= f.fetchLimit {
			break
		}
		f.logger.InfoContext(ctx, "fetching subreddit",
			logging.String("subreddit", subreddit),
			logging.Int("collected", len(collected)))

		posts, _, err := f.client.Subreddit.HotPosts(ctx, subreddit, &goreddit.ListOptions{Limit: postsPerListing})
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "fetch", "list-posts",
				fmt.Sprintf("subreddit %s", subreddit), err)
		}

		for _, post := range posts {
			if len(collected) >= f.fetchLimit {
				break
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			postAndComments, _, err := f.client.Post.Get(ctx, post.ID)
			if err != nil {
				f.logger.WarnContext(ctx, "skipping unreadable post",
					logging.String("post_id", post.ID),
					logging.Error(err))
				continue
			}
			collected = collectPoetic(postAndComments.Comments, collected, seen, f.fetchLimit)
		}
	}

	if len(collected) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "fetch", "collect", "no poetic comments found", nil)
	}
	f.logger.InfoContext(ctx, "fetch complete", logging.Int("comments", len(collected)))
	return collected, nil
}

// collectPoetic walks a comment tree depth-first and appends every body that
// passes the poem line filter, up to limit entries total.
func collectPoetic(tree []*goreddit.Comment, collected []poem.Comment, seen map[string]struct{}, limit int) []poem.Comment {
	for _, comment := range tree {
		if len(collected) >= limit {
			return collected
		}
		if comment == nil {
			continue
		}
		text := NormalizeBody(comment.Body)
		if Poetic(text) {
			if _, duplicate := seen[text]; !duplicate {
				seen[text] = struct{}{}
				collected = append(collected, poem.Comment{
					CommentURL: "https://www.reddit.com" + comment.Permalink,
					Text:       text,
					Author:     comment.Author,
					Time:       commentTime(comment),
					Upvotes:    comment.Score,
				})
			}
		}
		collected = collectPoetic(comment.Replies.Comments, collected, seen, limit)
	}
	return collected
}

func commentTime(comment *goreddit.Comment) string {
	if comment.Created == nil {
		return ""
	}
	return comment.Created.Time.Format(timeLayout)
}
