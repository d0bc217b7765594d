package textsink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitecrawl/lib/crawl"

	"github.com/stretchr/testify/require"
)

func TestWriteChapter(t *testing.T) {
	root := t.TempDir()
	sink := Sink{
		Root:     root,
		Filename: func(title string) string { return strings.ReplaceAll(title, ":", "") },
	}
	chapter := crawl.Chapter{
		Title:      "Chapter 1: Awakening",
		Paragraphs: []string{"The bell rang.", "Nobody moved."},
	}

	err := sink.WriteChapter(context.Background(), "shadow-slave", chapter)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(root, "shadow-slave", "Chapter 1 Awakening.txt"))
	require.NoError(t, err)
	require.Equal(t, "Chapter 1: Awakening\n\nThe bell rang.\n\nNobody moved.\n\n", string(contents))
}

func TestWriteChapterWithoutTitle(t *testing.T) {
	root := t.TempDir()
	sink := Sink{Root: root, OmitTitle: true}

	err := sink.WriteChapter(context.Background(), "book", crawl.Chapter{
		Title:      "Prologue",
		Paragraphs: []string{"Once."},
	})
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(root, "book", "Prologue.txt"))
	require.NoError(t, err)
	require.Equal(t, "Once.\n\n", string(contents))
}

func TestWriteChapterUnusableName(t *testing.T) {
	sink := Sink{Root: t.TempDir(), Filename: func(string) string { return "" }}
	err := sink.WriteChapter(context.Background(), "book", crawl.Chapter{Title: "???"})
	require.ErrorIs(t, err, crawl.ErrExtractionGap)
}
