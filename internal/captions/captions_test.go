package captions

import (
	"reflect"
	"strings"
	"testing"
)

const listing = "Rumah 1 Lantai Citraland Surabaya. LT 150m2 KT 3. " +
	"Disain Arsitektur Modern dengan Rooftop. " +
	"Lokasi strategis dekat pusat bisnis dan sekolah internasional. Harga Rp 5.5 M, nego."

func TestSplitBucketing(t *testing.T) {
	got := Split("A. B. C. D.", 3, RegexTokenizer{})
	want := []string{"A", "B", "C D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestSplitAlwaysReturnsN(t *testing.T) {
	texts := []string{listing, "One sentence only", "A. B.", "   ", "x"}
	for _, text := range texts {
		for n := 1; n <= 5; n++ {
			if got := Split(text, n, RegexTokenizer{}); len(got) != n {
				t.Errorf("Split(%q, %d) returned %d captions", text, n, len(got))
			}
		}
	}
}

func TestSplitSingleIsHook(t *testing.T) {
	got := Split(listing, 1, RegexTokenizer{})
	if len(got) != 1 || got[0] != "RUMAH 1 LANTAI CITRALAND SURABAYA" {
		t.Errorf("unexpected hook %q", got)
	}
}

func TestSplitPadding(t *testing.T) {
	got := Split("Only a hook!", 3, RegexTokenizer{})
	want := []string{"ONLY A HOOK", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}

	got = Split("Hook. Detail.", 4, RegexTokenizer{})
	want = []string{"HOOK", "DETAIL", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestSplitEmptyPlaceholders(t *testing.T) {
	got := Split("  ", 2, RegexTokenizer{})
	want := []string{"CAPTION 1", "CAPTION 2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
	if Split("text", 0, RegexTokenizer{}) != nil {
		t.Error("n < 1 should return nil")
	}
}

func TestSplitWordLimit(t *testing.T) {
	long := "Hook. " + strings.Repeat("Word ", 20) + "end."
	for _, c := range Split(long, 2, RegexTokenizer{}) {
		n := len(strings.Fields(c))
		if n > MaxWords && !strings.HasSuffix(c, Ellipsis) {
			t.Errorf("caption %q has %d words without ellipsis", c, n)
		}
		if strings.HasSuffix(c, Ellipsis) && n != MaxWords {
			t.Errorf("clipped caption %q should keep %d words", c, MaxWords)
		}
	}
}

func TestRegexTokenizer(t *testing.T) {
	got := RegexTokenizer{}.Sentences("Price is 5.5 M. Call now! 24 hours? yes. ok")
	want := []string{"Price is 5.5 M.", "Call now!", "24 hours? yes. ok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sentences = %q, want %q", got, want)
	}
}

func TestPunktTokenizer(t *testing.T) {
	tok, err := DetectTokenizer()
	if err != nil {
		t.Skipf("punkt unavailable, fell back to %s: %v", tok.Name(), err)
	}
	got := tok.Sentences("The house is new. It has a pool. The garden is big.")
	if len(got) != 3 {
		t.Errorf("expected 3 sentences, got %d: %q", len(got), got)
	}
}

func TestDetectedTokenizerSplits(t *testing.T) {
	tok, err := DetectTokenizer()
	if err != nil {
		t.Logf("punkt unavailable, using %s: %v", tok.Name(), err)
	}

	if got, want := Split("A. B. C. D.", 3, tok), []string{"A", "B", "C D"}; !reflect.DeepEqual(got, want) {
		t.Errorf("%s: Split = %q, want %q", tok.Name(), got, want)
	}

	got := tok.Sentences("Harga Rp 5.5 M. Hubungi kami sekarang. Lokasi strategis!")
	want := []string{"Harga Rp 5.5 M.", "Hubungi kami sekarang.", "Lokasi strategis!"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s: Sentences = %q, want %q", tok.Name(), got, want)
	}
}

func TestAssignColors(t *testing.T) {
	palette, err := ParsePalette([]string{"White", "#112233"})
	if err != nil {
		t.Fatalf("ParsePalette: %v", err)
	}
	caps := Assign([]string{"a", "b", "c", "d"}, palette)
	if caps[0].Color != HookColor || !caps[0].IsHook() {
		t.Errorf("hook color mismatch: %v", caps[0])
	}
	if caps[1].Color != Named["white"] {
		t.Errorf("caption 1 should be white, got %v", caps[1].Color)
	}
	if caps[2].Color.R != 0x11 || caps[2].Color.B != 0x33 {
		t.Errorf("caption 2 hex color mismatch: %v", caps[2].Color)
	}
	// cycle wraps back to the hook color
	if caps[3].Color != HookColor {
		t.Errorf("caption 3 should wrap to hook color, got %v", caps[3].Color)
	}

	if _, err := ParseColor("teal-ish"); err == nil {
		t.Error("expected error for unknown color")
	}
}
