package generation

import (
	"strings"
	"testing"
)

func TestParseDirectivesDefaults(t *testing.T) {
	t.Parallel()

	directives := ParseDirectives("Best niche for 2026?")

	if directives.Tier.Name != DefaultTier.Name {
		t.Fatalf("expected default tier %q, got %q", DefaultTier.Name, directives.Tier.Name)
	}
	if directives.Tone != "" || directives.Platform != "" || directives.Topic != "" {
		t.Fatalf("expected empty optional directives, got %#v", directives)
	}
}

func TestParseDirectivesRecognizesAllTiers(t *testing.T) {
	t.Parallel()

	for label, expected := range map[string]int64{
		"Short":  512,
		"medium": 1024,
		"LONG":   2048,
	} {
		directives := ParseDirectives("CONTENT_LENGTH: " + label + "\nquestion")
		if directives.Tier.MaxTokens != expected {
			t.Fatalf("label %q: expected ceiling %d, got %d", label, expected, directives.Tier.MaxTokens)
		}
	}
}

func TestParseDirectivesUnknownTierFallsBack(t *testing.T) {
	t.Parallel()

	directives := ParseDirectives("CONTENT_LENGTH: gigantic\nquestion")

	if directives.Tier.Name != DefaultTier.Name {
		t.Fatalf("expected fallback to default tier, got %q", directives.Tier.Name)
	}
}

func TestParseDirectivesExtractsToneAndPlatform(t *testing.T) {
	t.Parallel()

	prompt := "tone: playful and dry\nPLATFORM: LinkedIn\nTOPIC: SaaS pricing\nHow should I price?"
	directives := ParseDirectives(prompt)

	if directives.Tone != "playful and dry" {
		t.Fatalf("unexpected tone %q", directives.Tone)
	}
	if directives.Platform != "LinkedIn" {
		t.Fatalf("unexpected platform %q", directives.Platform)
	}
	if directives.Topic != "SaaS pricing" {
		t.Fatalf("unexpected topic %q", directives.Topic)
	}
}

func TestTitleForPrefersTopicMarker(t *testing.T) {
	t.Parallel()

	prompt := "TOPIC: SaaS pricing\nHow should I price my product?"
	title := TitleFor(prompt, ParseDirectives(prompt))

	if title != "SaaS pricing" {
		t.Fatalf("expected topic title, got %q", title)
	}
}

func TestTitleForTruncatesLongPrompts(t *testing.T) {
	t.Parallel()

	prompt := strings.Repeat("niche ", 20)
	title := TitleFor(prompt, ParseDirectives(prompt))

	if len([]rune(title)) != titlePrefixLength {
		t.Fatalf("expected title of %d runes, got %d (%q)", titlePrefixLength, len([]rune(title)), title)
	}
}

func TestTitleForKeepsShortPrompts(t *testing.T) {
	t.Parallel()

	title := TitleFor("  short prompt  ", Directives{})

	if title != "short prompt" {
		t.Fatalf("expected trimmed prompt as title, got %q", title)
	}
}
