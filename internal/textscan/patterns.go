// Package textscan holds the token patterns and normalization helpers
// shared by the date-sheet and roll-list parsers.
package textscan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"examsched/internal/config"
)

// Patterns holds the compiled token patterns for one parse request.
// Token shapes come from configuration because exam-document formats vary
// by institution.
type Patterns struct {
	// PaperID matches a fixed-length numeric paper id token.
	PaperID *regexp.Regexp
	// Date matches dd?dd?dddd with '.' or '-' separators.
	Date *regexp.Regexp
	// DateAtStart is the line-anchored variant of Date.
	DateAtStart *regexp.Regexp
	// PaperCode matches short alphanumeric codes like ENG-101 or
	// 24L6.0-ENG-101.
	PaperCode *regexp.Regexp
	// RollNo matches a registration-style long numeric token.
	RollNo *regexp.Regexp

	paperIDDigits int
	rollMinDigits int
}

// Compile builds the patterns for the given parser configuration.
func Compile(cfg config.ParsingConfig) *Patterns {
	return &Patterns{
		PaperID:     regexp.MustCompile(fmt.Sprintf(`\b(\d{%d})\b`, cfg.PaperIDDigits)),
		Date:        regexp.MustCompile(`(\d{2})[.-](\d{2})[.-](\d{4})`),
		DateAtStart: regexp.MustCompile(`^(\d{2})[.-](\d{2})[.-](\d{4})`),
		PaperCode:   regexp.MustCompile(`\b[\w.]+?-\d{3,4}\b`),
		RollNo:      regexp.MustCompile(fmt.Sprintf(`\b(\d{%d,})\b`, cfg.RollNoMinDigits)),

		paperIDDigits: cfg.PaperIDDigits,
		rollMinDigits: cfg.RollNoMinDigits,
	}
}

// PaperIDDigits returns the configured paper id length.
func (p *Patterns) PaperIDDigits() int { return p.paperIDDigits }

// RollNoMinDigits returns the configured registration-number minimum length.
func (p *Patterns) RollNoMinDigits() int { return p.rollMinDigits }

// NormalizeDate canonicalizes the separator of a matched date to '.'.
func NormalizeDate(date string) string {
	return strings.ReplaceAll(date, "-", ".")
}

var spaceRun = regexp.MustCompile(`\s+`)

// CollapseSpaces normalizes internal whitespace runs to single spaces and
// trims surrounding whitespace.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// TrimNoise removes leading/trailing dash and space noise from subject text.
func TrimNoise(s string) string {
	return strings.Trim(s, " -")
}

// DedupOrdered removes duplicates from tokens preserving first-occurrence
// order.
func DedupOrdered(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// ContainsDigit reports whether s contains any decimal digit.
func ContainsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// HasDigitRun reports whether s contains a run of at least n consecutive
// digits.
func HasDigitRun(s string, n int) bool {
	run := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// TrailingCapitalizedRun returns the run of capitalized, digit-free words
// at the end of s, up to maxWords. It is the name-recovery heuristic of
// the context-window strategy: the nearest preceding run of capitalized
// words is taken as the student name.
func TrailingCapitalizedRun(s string, maxWords int) string {
	words := strings.Fields(s)
	var run []string
	for i := len(words) - 1; i >= 0 && len(run) < maxWords; i-- {
		w := strings.Trim(words[i], ",.:;")
		if w == "" || ContainsDigit(w) {
			break
		}
		first := []rune(w)[0]
		if !unicode.IsUpper(first) {
			break
		}
		run = append(run, w)
	}
	if len(run) == 0 {
		return ""
	}
	// The walk collected words back to front.
	for i, j := 0, len(run)-1; i < j; i, j = i+1, j-1 {
		run[i], run[j] = run[j], run[i]
	}
	return strings.Join(run, " ")
}
