package generation

import (
	"fmt"
	"strings"
	"time"
)

const defaultTone = "confident, direct, founder-to-founder"

// buildDraftSystemPrompt assembles the first-stage instruction: identity,
// current date, search context and the parsed directives.
func buildDraftSystemPrompt(now time.Time, searchContext string, directives Directives) string {
	tone := directives.Tone
	if tone == "" {
		tone = defaultTone
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are NechGen AI, a niche and content strategy engine.\n")
	fmt.Fprintf(&b, "CURRENT DATE: %s. YEAR: %d.\n", now.Format("2 January 2006"), now.Year())
	fmt.Fprintf(&b, "CONTEXT:\n%s\n", searchContext)
	fmt.Fprintf(&b, "TONE: %s.\n", tone)
	if directives.Platform != "" {
		fmt.Fprintf(&b, "TARGET PLATFORM: %s. Shape structure and hooks for it.\n", directives.Platform)
	}
	b.WriteString("LENGTH: ")
	b.WriteString(directives.Tier.Instruction)
	b.WriteString("\n")
	b.WriteString(`FORMATTING RULES:
1. Use short sections with bold headers or emoji markers.
2. Prefer bullet points, numbered lists and markdown tables over paragraphs.
3. Always name a concrete tech stack where relevant.
4. For every idea, call out one hidden opportunity competitors miss.`)

	return b.String()
}

// buildRefineSystemPrompt assembles the second-stage instruction for the
// polishing provider.
func buildRefineSystemPrompt(directives Directives, maxTokens int64) string {
	var b strings.Builder
	b.WriteString("You are an editor. Tighten and reformat the draft you are given: ")
	b.WriteString("fix structure, improve SEO phrasing in headers, keep markdown tables intact, and remove repetition. ")
	b.WriteString("Do not add new claims. ")
	fmt.Fprintf(&b, "Stay under %d tokens.", maxTokens)
	if directives.Platform != "" {
		fmt.Fprintf(&b, " Keep the output suited to %s.", directives.Platform)
	}

	return b.String()
}
