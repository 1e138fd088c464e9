package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleMarkdown = `# Retrieval Notes

Some introductory *formatted* text about retrieval.

## Setup

` + "```" + `
make run
` + "```" + `

Closing paragraph.
`

func TestReadMarkdown_StripsFormatting(t *testing.T) {
	doc := ReadMarkdown("notes.md", []byte(sampleMarkdown))
	require.Equal(t, "notes.md", doc.Filename)
	require.Equal(t, "Retrieval Notes", doc.Props.Title)
	require.Contains(t, doc.FullText, "Some introductory formatted text about retrieval.")
	require.Contains(t, doc.FullText, "make run")
	require.Contains(t, doc.FullText, "Closing paragraph.")
	require.NotContains(t, doc.FullText, "*")
	require.NotContains(t, doc.FullText, "#")
}

func TestReadMarkdown_FirstPageTruncated(t *testing.T) {
	long := "# Title\n\n" + strings.Repeat("lorem ipsum dolor sit amet ", 200)
	doc := ReadMarkdown("long.md", []byte(long))
	require.Len(t, doc.FirstPage, 2000)
	require.True(t, strings.HasPrefix(doc.FullText, doc.FirstPage))
}

func TestReadMarkdown_NoHeading(t *testing.T) {
	doc := ReadMarkdown("plain.md", []byte("just a paragraph"))
	require.Equal(t, "", doc.Props.Title)
	require.Equal(t, "just a paragraph", doc.FullText)
}
