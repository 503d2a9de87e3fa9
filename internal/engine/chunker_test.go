package engine

import (
	"strings"
	"testing"
)

func TestSplitChunksShortText(t *testing.T) {
	chunks := SplitChunks("olá, tudo bem?", 300)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "olá, tudo bem?" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitChunksEmpty(t *testing.T) {
	if chunks := SplitChunks("", 300); chunks != nil {
		t.Errorf("expected nil for empty text, got %v", chunks)
	}
	if chunks := SplitChunks("   ", 300); chunks != nil {
		t.Errorf("expected nil for blank text, got %v", chunks)
	}
}

func TestSplitChunksBreaksAtWhitespace(t *testing.T) {
	text := "um dois tres quatro cinco"
	chunks := SplitChunks(text, 10)

	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 10 {
			t.Errorf("chunk %d exceeds size: %q (%d runes)", i, chunk, n)
		}
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk %d has edge whitespace: %q", i, chunk)
		}
	}

	// No word may be split: rejoining must reconstruct the text
	if got := strings.Join(chunks, " "); got != text {
		t.Errorf("rejoined chunks = %q, want %q", got, text)
	}
}

func TestSplitChunksNormalizesWhitespace(t *testing.T) {
	chunks := SplitChunks("olá \n  mundo\t!", 300)
	if len(chunks) != 1 || chunks[0] != "olá mundo !" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

func TestSplitChunksHardSplitsOversizedWord(t *testing.T) {
	chunks := SplitChunks("veja https://example.com/um/caminho/muito/longo ok", 12)

	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 12 {
			t.Errorf("chunk %d exceeds size: %q (%d runes)", i, chunk, n)
		}
	}
	// The oversized URL must survive concatenation intact
	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, "https://example.com/um/caminho/muito/longo") {
		t.Errorf("oversized word was lost: %v", chunks)
	}
}

func TestSplitChunksRuneCounts(t *testing.T) {
	// accented runes count as one character, not their byte width
	chunks := SplitChunks("ação ação", 4)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	for _, chunk := range chunks {
		if chunk != "ação" {
			t.Errorf("unexpected chunk: %q", chunk)
		}
	}
}
