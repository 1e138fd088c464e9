package ingest

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", 100, 10); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	text := "A short document."
	chunks := Split(text, 100, 10)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected the text back as one chunk, got %v", chunks)
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Sentence number %03d carries some unique payload. ", i)
	}
	text := sb.String()

	const chunkSize = 200
	const overlap = 30
	chunks := Split(text, chunkSize, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > chunkSize {
			t.Fatalf("chunk %d exceeds size bound: %d > %d", i, len(chunk), chunkSize)
		}
	}

	// Chunks are contiguous substrings sharing exactly overlap bytes, so
	// stripping the overlap from every chunk after the first reconstructs
	// the input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		rebuilt.WriteString(chunk[overlap:])
	}
	if rebuilt.String() != text {
		t.Fatal("reconstructed text does not match the original")
	}
}

func TestSplit_AdjacentChunksOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "word%04d ", i)
	}
	text := sb.String()

	const overlap = 20
	chunks := Split(text, 80, overlap)
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if !strings.HasSuffix(prev, cur[:overlap]) {
			t.Fatalf("chunk %d does not share %d bytes with its predecessor", i, overlap)
		}
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("alpha ", 10)
	para2 := strings.Repeat("beta ", 30)
	text := para1 + "\n\n" + para2

	chunks := Split(text, 100, 10)
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Fatalf("expected first chunk to end at the paragraph break, got %q", chunks[0])
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	text := "First sentence here. Second sentence follows. " + strings.Repeat("tail ", 40)
	chunks := Split(text, 50, 5)
	if !strings.HasSuffix(chunks[0], ". ") {
		t.Fatalf("expected first chunk to end at a sentence boundary, got %q", chunks[0])
	}
}

func TestSplit_RawCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := Split(text, 100, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 100 || len(chunks[2]) != 70 {
		t.Fatalf("unexpected chunk lengths: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplit_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("日本語のテキスト", 40)
	chunks := Split(text, 100, 10)
	for i, chunk := range chunks {
		for _, r := range chunk {
			if r == '�' {
				t.Fatalf("chunk %d split inside a rune", i)
			}
		}
	}
}
