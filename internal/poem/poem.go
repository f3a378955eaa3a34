package poem

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Comment is one fetched Reddit comment, the raw material for poem lines.
type Comment struct {
	CommentURL string
	Text       string
	Author     string
	AvatarURL  string
	Time       string
	Upvotes    int
}

// Line is one poem line: a comment plus its ordinal position in the poem.
// Index is 0-based and defines playback order; asset files are numbered from 1.
type Line struct {
	Index   int
	Comment Comment
}

var csvHeader = []string{"comment_url", "text", "author", "avatar_url", "time", "upvotes"}

// AudioFileName returns the voice-over clip name for a 0-based line index.
func AudioFileName(index int) string {
	return fmt.Sprintf("audio_%02d.wav", index+1)
}

// ImageFileName returns the screenshot overlay name for a 0-based line index.
func ImageFileName(index int) string {
	return fmt.Sprintf("comment_%02d_transparent.png", index+1)
}

// WriteComments writes comments to a CSV file with the standard header.
func WriteComments(path string, comments []Comment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, comment := range comments {
		record := []string{
			comment.CommentURL,
			comment.Text,
			comment.Author,
			comment.AvatarURL,
			comment.Time,
			strconv.Itoa(comment.Upvotes),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadComments reads a comment CSV written by WriteComments (or the upstream
// fetcher). Header order is fixed; extra columns are ignored.
func ReadComments(path string) ([]Comment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	comments := make([]Comment, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(csvHeader) {
			return nil, fmt.Errorf("%s: row %d has %d columns, want %d", path, i+2, len(record), len(csvHeader))
		}
		upvotes, err := strconv.Atoi(strings.TrimSpace(record[5]))
		if err != nil {
			upvotes = 0
		}
		comments = append(comments, Comment{
			CommentURL: record[0],
			Text:       record[1],
			Author:     record[2],
			AvatarURL:  record[3],
			Time:       record[4],
			Upvotes:    upvotes,
		})
	}
	return comments, nil
}

// ReadLines reads a poem CSV and assigns ordinal indices in file order.
func ReadLines(path string) ([]Line, error) {
	comments, err := ReadComments(path)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, len(comments))
	for i, comment := range comments {
		lines[i] = Line{Index: i, Comment: comment}
	}
	return lines, nil
}

func checkHeader(header []string) error {
	if len(header) < len(csvHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(csvHeader))
	}
	for i, want := range csvHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return fmt.Errorf("header column %d is %q, want %q", i, header[i], want)
		}
	}
	return nil
}
