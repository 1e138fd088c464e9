package ingest

import (
	"regexp"
	"strings"

	"github.com/sararag/sara/internal/model"
)

// patentKeywords mark the fixed-layout first page of a US patent grant or
// application. Containment of any one of them classifies the document.
var patentKeywords = []string{
	"united states patent",
	"patent no.",
	"patent application publication",
	"date of patent:",
	"inventors:",
	"assignee:",
}

// Classify decides patent vs. paper from first-page text. This is a
// heuristic: a miss only degrades metadata quality, never fails ingestion.
func Classify(firstPageText string) model.DocType {
	lower := strings.ToLower(firstPageText)
	for _, keyword := range patentKeywords {
		if strings.Contains(lower, keyword) {
			return model.DocTypePatent
		}
	}
	return model.DocTypePaper
}

// Patterns keyed to the numbered section markers of the US patent front
// page. Title spans lines up to the (71) applicant marker; the line-bound
// fields stop at end of line.
var patentPatterns = map[string]*regexp.Regexp{
	"title":            regexp.MustCompile(`(?s)\(54\)\s+(.*?)\s*\(71\)`),
	"inventors":        regexp.MustCompile(`\(72\)\s+Inventors?:\s*([^\n]+)`),
	"assignee":         regexp.MustCompile(`\(73\)\s+Assignee:\s*([^\n]+)`),
	"publication_date": regexp.MustCompile(`\(45\)\s+Date of Patent:\s*([^\n]+)`),
}

type PatentMetadata struct {
	Title           string
	Inventors       string
	Assignee        string
	PublicationDate string
}

// ExtractPatentMetadata pulls each front-page field independently. A field
// whose marker is absent yields the "Not Found" sentinel instead of an
// error.
func ExtractPatentMetadata(firstPageText string) PatentMetadata {
	fields := make(map[string]string, len(patentPatterns))
	for key, pattern := range patentPatterns {
		match := pattern.FindStringSubmatch(firstPageText)
		if match == nil {
			fields[key] = model.MetaNotFound
			continue
		}
		fields[key] = collapseLines(match[1])
	}
	return PatentMetadata{
		Title:           fields["title"],
		Inventors:       fields["inventors"],
		Assignee:        fields["assignee"],
		PublicationDate: fields["publication_date"],
	}
}

// Authors renders inventors and assignee into the single authors column of
// the chunk table.
func (m PatentMetadata) Authors() string {
	return "Inventors: " + m.Inventors + "; Assignee: " + m.Assignee
}

func collapseLines(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
