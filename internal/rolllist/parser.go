// Package rolllist converts roll-list page text, and optionally its
// tabular structure, into student records.
//
// Roll-list layouts vary wildly between institutions, so the parser
// applies an ordered list of strategies and keeps the first one that
// yields any student: structured rows, labeled text blocks, then a
// context-window scan around every registration-style number as the last
// resort. A strategy producing zero students is silently superseded by
// the next; if all fail the parser returns an empty list, never an error.
package rolllist

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"examsched/internal/config"
	"examsched/internal/textscan"
	"examsched/pkg/contracts/domain"
)

// Stats carries the diagnostics of one roll-list parse.
type Stats struct {
	// Strategy names the strategy that produced the student records, or
	// is empty when every strategy failed.
	Strategy string
	// Attempted lists the strategies tried, in order.
	Attempted []string
	// MixedShapes is set when one document contains both short and
	// registration-style roll numbers.
	MixedShapes bool
	// Warnings holds human-readable diagnostics for the caller.
	Warnings []string
}

// Options control a single parse invocation.
type Options struct {
	// ForceTextMode skips the tabular strategy and starts at the
	// delimited-block strategy.
	ForceTextMode bool
}

// Parser extracts student records from roll-list documents.
type Parser struct {
	patterns *textscan.Patterns
	cfg      config.ParsingConfig
	logger   *slog.Logger

	labelRe   *regexp.Regexp
	rollRe    *regexp.Regexp
	nameRe    *regexp.Regexp
	anyDigits *regexp.Regexp
}

// NewParser creates a roll-list parser with the given tunables.
func NewParser(cfg config.ParsingConfig, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		patterns: textscan.Compile(cfg),
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "rolllist_parser")),

		labelRe:   regexp.MustCompile(`(?i)(roll|registration)\s*no\.?\s*:?\s*`),
		rollRe:    regexp.MustCompile(`(?i)(?:roll|registration)\s*no\.?\s*:?\s*(\d+)`),
		nameRe:    regexp.MustCompile(`(?i)name[\s:]+([A-Za-z][A-Za-z\s.']*?)\s*(?:father|subjects|roll\s*no|registration\s*no|$)`),
		anyDigits: regexp.MustCompile(`\d`),
	}
}

// strategy is one fallback step: it returns its students, or nil/empty to
// hand over to the next strategy.
type strategy struct {
	name string
	run  func() []domain.StudentRecord
}

// Parse runs the strategies in order and returns the first non-empty
// student set. Rows may be nil when the acquisition step produced no
// tabular structure.
func (p *Parser) Parse(pages []string, rows [][]string, opts Options) ([]domain.StudentRecord, *Stats) {
	stats := &Stats{}
	fullText := strings.Join(pages, "\n")

	var strategies []strategy
	if !opts.ForceTextMode && !p.cfg.ForceTextMode {
		strategies = append(strategies, strategy{"tabular", func() []domain.StudentRecord {
			return p.parseTabular(rows)
		}})
	}
	strategies = append(strategies,
		strategy{"delimited-block", func() []domain.StudentRecord {
			return p.parseBlocks(fullText)
		}},
		strategy{"context-window", func() []domain.StudentRecord {
			return p.parseWindows(fullText)
		}},
	)

	var students []domain.StudentRecord
	for _, s := range strategies {
		stats.Attempted = append(stats.Attempted, s.name)
		students = s.run()
		if len(students) > 0 {
			stats.Strategy = s.name
			break
		}
		p.logger.Debug("roll-list strategy yielded no students",
			slog.String("strategy", s.name))
	}

	p.checkRollShapes(students, stats)

	return students, stats
}

// parseTabular extracts students from structured row data: one row per
// student, identified by a cell holding a registration-style number.
func (p *Parser) parseTabular(rows [][]string) []domain.StudentRecord {
	var students []domain.StudentRecord

	for _, row := range rows {
		var rollNo string
		rollIdx := -1
		for i, cell := range row {
			if m := p.patterns.RollNo.FindString(cell); m != "" {
				rollNo = m
				rollIdx = i
				break
			}
		}
		if rollNo == "" {
			continue
		}

		// The name usually sits in one of the first few columns: take
		// the first alphabetic cell without a long digit run.
		name := domain.NameUnknown
		candidates := 0
		for i, cell := range row {
			if i == rollIdx {
				continue
			}
			candidates++
			if candidates > 5 {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" || !hasLetter(cell) {
				continue
			}
			if textscan.HasDigitRun(cell, p.cfg.PaperIDDigits) {
				continue
			}
			name = textscan.CollapseSpaces(cell)
			break
		}

		rowText := strings.Join(row, " ")
		paperIDs := textscan.DedupOrdered(p.patterns.PaperID.FindAllString(rowText, -1))
		if len(paperIDs) == 0 {
			continue
		}

		students = append(students, domain.StudentRecord{
			RollNo:      rollNo,
			StudentName: name,
			PaperIDs:    paperIDs,
		})
	}

	return students
}

// parseBlocks splits the full text on Roll No / Registration No labels,
// producing one block per student.
func (p *Parser) parseBlocks(fullText string) []domain.StudentRecord {
	labelLocs := p.labelRe.FindAllStringIndex(fullText, -1)
	if len(labelLocs) == 0 {
		return nil
	}

	var students []domain.StudentRecord
	for i, loc := range labelLocs {
		end := len(fullText)
		if i+1 < len(labelLocs) {
			end = labelLocs[i+1][0]
		}
		block := fullText[loc[0]:end]

		rollMatch := p.rollRe.FindStringSubmatch(block)
		if rollMatch == nil {
			continue
		}
		rollNo := rollMatch[1]

		registration := strings.Contains(strings.ToLower(rollMatch[0]), "registration")
		name := p.extractBlockName(block, registration)

		paperIDs := textscan.DedupOrdered(p.patterns.PaperID.FindAllString(block, -1))
		if len(paperIDs) == 0 {
			continue
		}

		students = append(students, domain.StudentRecord{
			RollNo:      rollNo,
			StudentName: name,
			PaperIDs:    paperIDs,
		})
	}

	return students
}

// extractBlockName locates the student name within one block. A labeled
// Name field wins; otherwise the lines after the number line are scanned.
// Registration-style blocks look a few lines ahead for the first
// non-empty, digit-free line longer than one character, which guards
// against taking a blank or numeric line as the name.
func (p *Parser) extractBlockName(block string, registration bool) string {
	if m := p.nameRe.FindStringSubmatch(block); m != nil {
		if name := textscan.CollapseSpaces(m[1]); name != "" {
			return name
		}
	}

	lines := strings.Split(block, "\n")
	lookahead := 1
	if registration {
		lookahead = 4
	}
	for idx := 1; idx < len(lines) && idx <= lookahead; idx++ {
		candidate := strings.TrimSpace(lines[idx])
		if candidate == "" || p.anyDigits.MatchString(candidate) {
			continue
		}
		if registration && len([]rune(candidate)) <= 1 {
			continue
		}
		return textscan.CollapseSpaces(candidate)
	}

	return domain.NameUnknown
}

// parseWindows is the last-resort strategy: around every occurrence of a
// registration-style number take a fixed-size character window, collect
// the paper ids in it, and recover a name from the nearest preceding run
// of capitalized words. Candidates without any paper id are rejected.
func (p *Parser) parseWindows(fullText string) []domain.StudentRecord {
	locs := p.patterns.RollNo.FindAllStringIndex(fullText, -1)
	if len(locs) == 0 {
		return nil
	}

	window := p.cfg.ContextWindow
	seen := make(map[string]struct{})
	var students []domain.StudentRecord

	for _, loc := range locs {
		rollNo := fullText[loc[0]:loc[1]]
		if _, dup := seen[rollNo]; dup {
			continue
		}

		start := loc[0] - window
		if start < 0 {
			start = 0
		}
		end := loc[1] + window
		if end > len(fullText) {
			end = len(fullText)
		}

		paperIDs := textscan.DedupOrdered(p.patterns.PaperID.FindAllString(fullText[start:end], -1))
		if len(paperIDs) == 0 {
			continue
		}

		name := textscan.TrailingCapitalizedRun(fullText[start:loc[0]], 6)
		if name == "" {
			name = domain.NameUnknown
		}

		seen[rollNo] = struct{}{}
		students = append(students, domain.StudentRecord{
			RollNo:      rollNo,
			StudentName: name,
			PaperIDs:    paperIDs,
		})
	}

	return students
}

// checkRollShapes flags documents that mix short and registration-style
// roll numbers; the shape convention should be consistent within one
// roll list.
func (p *Parser) checkRollShapes(students []domain.StudentRecord, stats *Stats) {
	short, long := 0, 0
	for _, s := range students {
		if len(s.RollNo) >= p.cfg.RollNoMinDigits {
			long++
		} else {
			short++
		}
	}
	if short > 0 && long > 0 {
		stats.MixedShapes = true
		stats.Warnings = append(stats.Warnings,
			fmt.Sprintf("inconsistent roll number shapes in one roll list: %d short, %d registration-style", short, long))
		p.logger.Warn("inconsistent roll number shapes detected",
			slog.Int("short", short),
			slog.Int("long", long))
	}
}

// hasLetter reports whether s contains at least one ASCII letter.
func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
