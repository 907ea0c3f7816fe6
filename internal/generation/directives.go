package generation

import (
	"strings"
)

// Tier is a recognized content-length class. Each tier fixes the output token
// ceiling forwarded to both providers and the wording of the length
// instruction embedded in the prompt.
type Tier struct {
	Name        string
	MaxTokens   int64
	Instruction string
}

var (
	tierShort  = Tier{Name: "short", MaxTokens: 512, Instruction: "Keep the answer short and punchy: a few tight bullet points, no filler."}
	tierMedium = Tier{Name: "medium", MaxTokens: 1024, Instruction: "Aim for a medium-length answer: structured sections with concise bullets."}
	tierLong   = Tier{Name: "long", MaxTokens: 2048, Instruction: "Produce a long-form answer: full breakdown with tables and sections."}
)

// DefaultTier is applied whenever the length directive is absent or
// unrecognized. The mapping is total: parsing never fails.
var DefaultTier = tierMedium

var tiersByLabel = map[string]Tier{
	"short":  tierShort,
	"medium": tierMedium,
	"long":   tierLong,
}

// Directives are the options a user can embed in free prompt text, parsed
// once at the boundary into an explicit configuration object.
type Directives struct {
	Tier     Tier
	Tone     string
	Platform string
	Topic    string
}

const (
	markerLength   = "CONTENT_LENGTH:"
	markerTone     = "TONE:"
	markerPlatform = "PLATFORM:"
	markerTopic    = "TOPIC:"
)

// ParseDirectives scans the prompt for embedded directive markers. Markers
// are matched per line, case-insensitively; anything unrecognized falls back
// to defaults and is otherwise left in the prompt untouched.
func ParseDirectives(prompt string) Directives {
	directives := Directives{Tier: DefaultTier}

	for _, line := range strings.Split(prompt, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, markerLength):
			label := strings.ToLower(strings.TrimSpace(trimmed[len(markerLength):]))
			if tier, ok := tiersByLabel[label]; ok {
				directives.Tier = tier
			}
		case strings.HasPrefix(upper, markerTone):
			directives.Tone = strings.TrimSpace(trimmed[len(markerTone):])
		case strings.HasPrefix(upper, markerPlatform):
			directives.Platform = strings.TrimSpace(trimmed[len(markerPlatform):])
		case strings.HasPrefix(upper, markerTopic):
			directives.Topic = strings.TrimSpace(trimmed[len(markerTopic):])
		}
	}

	return directives
}

const titlePrefixLength = 30

// TitleFor derives a display label for a new conversation: the explicit topic
// marker when present, otherwise a fixed prefix of the raw prompt. Best
// effort, never an identifier.
func TitleFor(prompt string, directives Directives) string {
	if directives.Topic != "" {
		return directives.Topic
	}

	trimmed := strings.TrimSpace(prompt)
	runes := []rune(trimmed)
	if len(runes) > titlePrefixLength {
		return string(runes[:titlePrefixLength])
	}
	return trimmed
}
