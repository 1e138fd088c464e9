package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ReadMarkdown parses markdown bytes into a Document: plain text stripped
// of formatting for chunking, with the first level-1 heading as the title
// property.
func ReadMarkdown(filename string, source []byte) *Document {
	md := goldmark.New()
	reader := text.NewReader(source)
	root := md.Parser().Parse(reader)

	var parts []string
	title := ""
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			heading := string(n.Text(source))
			if title == "" && n.Level == 1 {
				title = heading
			}
			parts = append(parts, heading)
		case *ast.FencedCodeBlock:
			var code strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				code.Write(line.Value(source))
			}
			parts = append(parts, code.String())
		default:
			if txt := extractText(node, source); txt != "" {
				parts = append(parts, txt)
			}
		}
	}

	fullText := strings.Join(parts, "\n\n")
	firstPage := fullText
	if len(firstPage) > 2000 {
		firstPage = firstPage[:2000]
	}
	return &Document{
		Filename:  filename,
		FirstPage: firstPage,
		FullText:  fullText,
		Props:     DocumentProps{Title: title},
	}
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
