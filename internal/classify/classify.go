package classify

import (
	"fmt"
	"strings"
	"unicode"
)

// Category is one of the built-in post categories assigned to imported
// items that arrive without one.
type Category string

const (
	Technology     Category = "Technology"
	WebDevelopment Category = "Web Development"
	Design         Category = "Design"
	Science        Category = "Science"
	Health         Category = "Health"
)

// Builtin returns the built-in categories in canonical order.
func Builtin() []Category {
	return []Category{Technology, WebDevelopment, Design, Science, Health}
}

var categoryKeywords = map[Category][]string{
	Technology: {
		"artificial intelligence", "machine learning", "ai", "algorithm",
		"quantum", "blockchain", "cryptocurrency", "computing", "robot",
		"cloud", "data", "software", "hardware", "chip", "automation",
	},
	WebDevelopment: {
		"javascript", "typescript", "react", "vue", "angular", "svelte",
		"css", "html", "frontend", "backend", "browser", "web",
		"framework", "api", "node", "http",
	},
	Design: {
		"design", "ui/ux", "user experience", "user interface", "typography",
		"color", "colour", "layout", "animation", "figma", "visual",
		"minimalist", "branding",
	},
	Science: {
		"science", "research", "genome", "genetic", "climate", "physics",
		"biology", "chemistry", "astronomy", "discovery", "experiment",
		"carbon", "study",
	},
	Health: {
		"health", "mental", "wellness", "nutrition", "diet", "exercise",
		"sleep", "medical", "fitness", "stress", "burnout",
	},
}

// Aliases maps short CLI flags to built-in category names.
var Aliases = map[string]Category{
	"tech":    Technology,
	"web":     WebDevelopment,
	"webdev":  WebDevelopment,
	"design":  Design,
	"science": Science,
	"health":  Health,
}

// Resolve maps user input to one of the given fixture categories. Aliases
// and case-insensitive spellings are accepted; the result is always the
// exact spelling used by the fixture. Empty input resolves to "".
func Resolve(input string, categories []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	for _, c := range categories {
		if c == input {
			return c, nil
		}
	}
	want := input
	if cat, ok := Aliases[strings.ToLower(input)]; ok {
		want = string(cat)
	}
	for _, c := range categories {
		if strings.EqualFold(c, want) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (valid: %s)", input, strings.Join(categories, ", "))
}

// Classify picks a built-in category from a post's title and content.
// Title hits count double. Ties go to the earlier category and posts with
// no hits default to Technology.
func Classify(title, content string) Category {
	titleTokens := tokenize(title)
	bodyTokens := tokenize(content)
	titleLower := strings.ToLower(title)
	bodyLower := strings.ToLower(content)

	best := Technology
	bestScore := 0
	for _, cat := range Builtin() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.ContainsAny(kw, " /") {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(bodyLower, kw) {
					score++
				}
				continue
			}
			score += 2 * countToken(titleTokens, kw)
			score += countToken(bodyTokens, kw)
		}
		if score > bestScore {
			best, bestScore = cat, score
		}
	}
	return best
}

// countToken counts tokens equal to kw or to kw plus a plural suffix, so
// "ai" never hits "aims" or "said".
func countToken(tokens []string, kw string) int {
	n := 0
	for _, t := range tokens {
		if t == kw || t == kw+"s" || t == kw+"es" {
			n++
		}
	}
	return n
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
