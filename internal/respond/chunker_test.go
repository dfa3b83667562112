package respond

import (
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestChunk_ShortTextIsOneChunk(t *testing.T) {
	t.Parallel()
	got := Chunk("hello there, how are you today?", DefaultMaxWords)
	if len(got) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got))
	}
	if got[0] != "hello there, how are you today?" {
		t.Errorf("chunk = %q", got[0])
	}
}

func TestChunk_EmptyText(t *testing.T) {
	t.Parallel()
	if got := Chunk("   ", DefaultMaxWords); got != nil {
		t.Errorf("Chunk of whitespace = %v, want nil", got)
	}
}

func TestChunk_SplitsWithoutPunctuationAtLimit(t *testing.T) {
	t.Parallel()
	got := Chunk(words(150), DefaultMaxWords)
	if len(got) != 3 {
		t.Fatalf("got %d chunks, want 3", len(got))
	}
	wantSizes := []int{60, 60, 30}
	for i, c := range got {
		if n := len(strings.Fields(c)); n != wantSizes[i] {
			t.Errorf("chunk %d has %d words, want %d", i, n, wantSizes[i])
		}
	}
}

func TestChunk_CutsAtLastSentenceEnd(t *testing.T) {
	t.Parallel()
	// 10 words ending in a period, then 55 more words: the first window
	// covers all 60-word positions, so the cut lands after the period.
	text := words(9) + " end. " + words(55)
	got := Chunk(text, DefaultMaxWords)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if !strings.HasSuffix(got[0], "end.") {
		t.Errorf("first chunk should end at the period, got %q", got[0])
	}
	if n := len(strings.Fields(got[1])); n != 55 {
		t.Errorf("second chunk has %d words, want 55", n)
	}
}

func TestChunk_HonoursAllClauseEnders(t *testing.T) {
	t.Parallel()
	for _, p := range []string{".", "!", "?", ";", ":"} {
		text := words(5) + " stop" + p + " " + words(60)
		got := Chunk(text, DefaultMaxWords)
		if len(got) < 2 {
			t.Fatalf("%q: got %d chunks, want at least 2", p, len(got))
		}
		if !strings.HasSuffix(got[0], "stop"+p) {
			t.Errorf("%q: first chunk = %q, want cut after the punctuation", p, got[0])
		}
	}
}

func TestChunk_StripsAsterisks(t *testing.T) {
	t.Parallel()
	got := Chunk("this is *really* important, *trust* me", DefaultMaxWords)
	if len(got) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got))
	}
	if strings.Contains(got[0], "*") {
		t.Errorf("chunk still contains asterisks: %q", got[0])
	}
}

func TestChunk_RejoinReproducesInput(t *testing.T) {
	t.Parallel()

	texts := []string{
		"hello there",
		words(9) + " end. " + words(55),
		words(150),
		"One sentence. Another one! A third? And   some   extra   spacing.",
	}
	for _, text := range texts {
		got := strings.Join(Chunk(text, DefaultMaxWords), " ")
		want := strings.Join(strings.Fields(text), " ")
		if got != want {
			t.Errorf("rejoined chunks = %q, want %q", got, want)
		}
	}
}

func TestChunk_ExactMultipleOfLimit(t *testing.T) {
	t.Parallel()
	got := Chunk(words(120), DefaultMaxWords)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	for i, c := range got {
		if n := len(strings.Fields(c)); n != 60 {
			t.Errorf("chunk %d has %d words, want 60", i, n)
		}
	}
}
