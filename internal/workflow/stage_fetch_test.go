package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/sundai-club/reddit-rhymes/internal/poem"
)

type fakeSource struct {
	comments []poem.Comment
	err      error
}

func (f *fakeSource) Fetch(context.Context) ([]poem.Comment, error) { return f.comments, f.err }

type fakeComposer struct {
	selected []poem.Comment
	err      error
	sawInput int
}

func (f *fakeComposer) Compose(_ context.Context, comments []poem.Comment) ([]poem.Comment, error) {
	f.sawInput = len(comments)
	return f.selected, f.err
}

func TestFetchStageWritesCommentsCSV(t *testing.T) {
	t.Parallel()
	cfg := testWorkflowConfig(t)
	source := &fakeSource{comments: []poem.Comment{
		{Text: "first fetched line", Author: "a", Upvotes: 3},
		{Text: "second fetched line", Author: "b", Upvotes: 7},
	}}

	stage := NewFetchStage(cfg, source, nil)
	if err := stage.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !stage.ArtifactReady() {
		t.Fatal("artifact not ready after run")
	}

	read, err := poem.ReadComments(cfg.CommentsCSV())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(read) != 2 || read[1].Upvotes != 7 {
		t.Fatalf("round trip mismatch: %+v", read)
	}
}

func TestFetchStageFingerprintTracksConfig(t *testing.T) {
	t.Parallel()
	cfg := testWorkflowConfig(t)
	stage := NewFetchStage(cfg, &fakeSource{}, nil)

	before, err := stage.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	cfg.Reddit.Subreddits = append(cfg.Reddit.Subreddits, "poetry")
	after, err := stage.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if before == after {
		t.Fatal("fingerprint unchanged after subreddit change")
	}
}

func TestComposeStageWritesPoemCSV(t *testing.T) {
	t.Parallel()
	cfg := testWorkflowConfig(t)
	fetched := []poem.Comment{
		{Text: "line one of many", Author: "a"},
		{Text: "line two of many", Author: "b"},
		{Text: "line three of many", Author: "c"},
	}
	if err := poem.WriteComments(cfg.CommentsCSV(), fetched); err != nil {
		t.Fatalf("seed comments: %v", err)
	}

	composer := &fakeComposer{selected: fetched[:2]}
	stage := NewComposeStage(cfg, composer, nil)
	if err := stage.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if composer.sawInput != 3 {
		t.Fatalf("composer saw %d comments, want 3", composer.sawInput)
	}

	lines, err := poem.ReadLines(cfg.PoemCSV())
	if err != nil {
		t.Fatalf("read poem: %v", err)
	}
	if len(lines) != 2 || lines[0].Index != 0 || lines[1].Index != 1 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestComposeStageRequiresCommentsCSV(t *testing.T) {
	t.Parallel()
	cfg := testWorkflowConfig(t)
	stage := NewComposeStage(cfg, &fakeComposer{}, nil)
	if err := stage.Run(context.Background()); err == nil {
		t.Fatal("expected error when comments file is missing")
	}
	if _, err := stage.Fingerprint(); err == nil {
		t.Fatal("expected fingerprint error when comments file is missing")
	}
}

func TestComposeStagePropagatesComposerError(t *testing.T) {
	t.Parallel()
	cfg := testWorkflowConfig(t)
	if err := poem.WriteComments(cfg.CommentsCSV(), []poem.Comment{{Text: "only line here"}}); err != nil {
		t.Fatalf("seed comments: %v", err)
	}

	boom := errors.New("no rhymes today")
	stage := NewComposeStage(cfg, &fakeComposer{err: boom}, nil)
	if err := stage.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected composer error, got %v", err)
	}
}
