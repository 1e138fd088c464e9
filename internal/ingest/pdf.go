package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/sararag/sara/internal/model"
)

// Document is one parsed source file ready for chunking.
type Document struct {
	Filename  string
	FirstPage string
	FullText  string
	Props     DocumentProps
}

// DocumentProps are container-level properties (the PDF Info dictionary).
type DocumentProps struct {
	Title        string
	Author       string
	CreationDate string
}

// ReadPDF extracts the full text, the first-page text, and the Info
// dictionary properties of a PDF on disk.
func ReadPDF(path string) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	body, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	fullText := buf.String()
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("no text extracted from pdf")
	}

	firstPage := ""
	if reader.NumPage() > 0 {
		page := reader.Page(1)
		if !page.V.IsNull() {
			// First-page extraction drives classification only; a failure
			// here still leaves the full text usable.
			if text, err := page.GetPlainText(nil); err == nil {
				firstPage = text
			}
		}
	}

	info := reader.Trailer().Key("Info")
	props := DocumentProps{
		Title:        strings.TrimSpace(info.Key("Title").RawString()),
		Author:       strings.TrimSpace(info.Key("Author").RawString()),
		CreationDate: strings.TrimSpace(info.Key("CreationDate").RawString()),
	}

	return &Document{
		Filename:  filepath.Base(path),
		FirstPage: firstPage,
		FullText:  fullText,
		Props:     props,
	}, nil
}

// ExtractPaperMetadata reads title, authors and publication date from the
// container properties, falling back to the filename and the unknown
// sentinels when a property is absent.
func ExtractPaperMetadata(props DocumentProps, filename string) model.DocumentMetadata {
	meta := model.DocumentMetadata{
		Title:           props.Title,
		Authors:         props.Author,
		PublicationDate: formatPDFDate(props.CreationDate),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if meta.Authors == "" {
		meta.Authors = model.MetaUnknownAuthors
	}
	if meta.PublicationDate == "" {
		meta.PublicationDate = model.MetaUnknownDate
	}
	return meta
}

// formatPDFDate renders a PDF "D:YYYYMMDDHHmmSS" date as YYYY-MM-DD,
// passing anything it cannot parse through unchanged.
func formatPDFDate(raw string) string {
	s := strings.TrimPrefix(raw, "D:")
	if len(s) < 8 {
		return raw
	}
	for _, r := range s[:8] {
		if r < '0' || r > '9' {
			return raw
		}
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:8]
}
