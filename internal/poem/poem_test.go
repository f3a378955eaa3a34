package poem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAssetNames(t *testing.T) {
	t.Parallel()
	if got := AudioFileName(0); got != "audio_01.wav" {
		t.Fatalf("AudioFileName(0) = %q", got)
	}
	if got := ImageFileName(11); got != "comment_12_transparent.png" {
		t.Fatalf("ImageFileName(11) = %q", got)
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "comments.csv")
	comments := []Comment{
		{CommentURL: "https://www.reddit.com/r/a/1", Text: "He is smart", Author: "alpha", Time: "2026-08-01 12:00:00", Upvotes: 42},
		{CommentURL: "https://www.reddit.com/r/a/2", Text: "This, with commas, and \"quotes\"", Author: "beta", Upvotes: 1},
	}
	if err := WriteComments(path, comments); err != nil {
		t.Fatalf("WriteComments failed: %v", err)
	}
	got, err := ReadComments(path)
	if err != nil {
		t.Fatalf("ReadComments failed: %v", err)
	}
	if len(got) != len(comments) {
		t.Fatalf("got %d comments, want %d", len(got), len(comments))
	}
	for i := range comments {
		if got[i] != comments[i] {
			t.Fatalf("comment %d mismatch: got %+v want %+v", i, got[i], comments[i])
		}
	}
}

func TestReadLinesAssignsOrder(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "poem.csv")
	if err := WriteComments(path, []Comment{
		{Text: "first", Author: "a"},
		{Text: "second", Author: "b"},
		{Text: "third", Author: "c"},
	}); err != nil {
		t.Fatalf("WriteComments failed: %v", err)
	}
	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	for i, line := range lines {
		if line.Index != i {
			t.Fatalf("line %d has index %d", i, line.Index)
		}
	}
	if lines[2].Comment.Text != "third" {
		t.Fatalf("order not preserved: %+v", lines)
	}
}

func TestReadCommentsRejectsWrongHeader(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadComments(path); err == nil {
		t.Fatal("expected header error")
	}
}
