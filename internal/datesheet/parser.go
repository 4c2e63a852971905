// Package datesheet converts date-sheet page text into a mapping from
// paper id to exam metadata.
package datesheet

import (
	"fmt"
	"log/slog"
	"strings"

	"examsched/internal/config"
	"examsched/internal/textscan"
	"examsched/pkg/contracts/domain"
)

// Stats carries the diagnostics of one date-sheet parse.
type Stats struct {
	// Lines is the number of non-empty lines scanned.
	Lines int
	// DroppedNoDate lists paper ids found before any date context was
	// established. They are dropped, not retried from a later date.
	DroppedNoDate []string
	// Conflicts lists paper ids that appeared under more than one date.
	// The mapping keeps the last occurrence; the conflict is surfaced so
	// re-exam or makeup slots are not silently masked.
	Conflicts []string
	// Warnings holds the human-readable messages for both cases above.
	Warnings []string
}

// Parser scans date-sheet text for exam entries.
type Parser struct {
	patterns *textscan.Patterns
	anchor   config.DateAnchor
	logger   *slog.Logger
}

// NewParser creates a date-sheet parser with the given tunables.
func NewParser(cfg config.ParsingConfig, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		patterns: textscan.Compile(cfg),
		anchor:   cfg.DateAnchor,
		logger:   logger.With(slog.String("component", "datesheet_parser")),
	}
}

// Parse scans the page texts in document order and returns the paper-id
// mapping. Later lines overwrite earlier mappings for the same id, so the
// result reflects the last occurrence in document order. No input is
// fatal; a page yielding no text is skipped.
func (p *Parser) Parse(pages []string) (map[string]domain.ExamEntry, *Stats) {
	anchored := p.anchor != config.AnchorAnywhere

	entries, stats := p.scan(pages, anchored)

	// In auto mode an anchored pass that found nothing usually means the
	// extractor put leading noise before the dates; rescan unanchored.
	if len(entries) == 0 && p.anchor == config.AnchorAuto {
		p.logger.Debug("anchored scan found no entries, rescanning anywhere in line")
		entries, stats = p.scan(pages, false)
	}

	return entries, stats
}

// scanState is the fold state threaded through the line scan: the
// most-recently-seen date and the accumulating mapping.
type scanState struct {
	currentDate string
	entries     map[string]domain.ExamEntry
}

func (p *Parser) scan(pages []string, anchored bool) (map[string]domain.ExamEntry, *Stats) {
	state := scanState{entries: make(map[string]domain.ExamEntry)}
	stats := &Stats{}

	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			stats.Lines++
			state = p.step(state, line, anchored, stats)
		}
	}

	return state.entries, stats
}

// step processes a single line: it may establish a new date context and,
// when a date is already established, contribute exam entries for every
// paper id on the line.
func (p *Parser) step(state scanState, line string, anchored bool, stats *Stats) scanState {
	datePattern := p.patterns.Date
	if anchored {
		datePattern = p.patterns.DateAtStart
	}

	dateLoc := datePattern.FindStringIndex(line)
	if dateLoc != nil {
		state.currentDate = textscan.NormalizeDate(line[dateLoc[0]:dateLoc[1]])
		// The same line may still carry paper entries, so keep scanning.
	}

	paperIDs := p.patterns.PaperID.FindAllString(line, -1)
	if len(paperIDs) == 0 {
		return state
	}

	if state.currentDate == "" {
		for _, pid := range paperIDs {
			stats.DroppedNoDate = append(stats.DroppedNoDate, pid)
			stats.Warnings = append(stats.Warnings,
				fmt.Sprintf("found paper id %s without a preceding date; entry dropped", pid))
		}
		p.logger.Warn("paper ids found before any date context",
			slog.Any("paper_ids", paperIDs))
		return state
	}

	paperCode := p.findPaperCode(line, dateLoc)

	subject := p.extractSubject(line, paperCode, paperIDs[0], dateLoc)

	for _, pid := range paperIDs {
		if prev, ok := state.entries[pid]; ok && prev.ExamDate != state.currentDate {
			stats.Conflicts = append(stats.Conflicts, pid)
			stats.Warnings = append(stats.Warnings,
				fmt.Sprintf("paper id %s listed under %s and %s; keeping %s",
					pid, prev.ExamDate, state.currentDate, state.currentDate))
		}
		state.entries[pid] = domain.ExamEntry{
			PaperID:     pid,
			ExamDate:    state.currentDate,
			SubjectName: subject,
			PaperCode:   paperCode,
		}
	}

	return state
}

// findPaperCode returns the first paper-code token on the line that is
// not part of the date match itself (a dash-separated date would
// otherwise satisfy the code shape).
func (p *Parser) findPaperCode(line string, dateLoc []int) string {
	for _, loc := range p.patterns.PaperCode.FindAllStringIndex(line, -1) {
		if dateLoc != nil && loc[0] < dateLoc[1] && loc[1] > dateLoc[0] {
			continue
		}
		return line[loc[0]:loc[1]]
	}
	return ""
}

// extractSubject takes the text before the paper code (or, without a
// code, before the first paper id), drops any date token, collapses
// whitespace and trims dash/space noise.
func (p *Parser) extractSubject(line, paperCode, firstPaperID string, dateLoc []int) string {
	cut := len(line)
	if paperCode != "" {
		if idx := strings.Index(line, paperCode); idx >= 0 {
			cut = idx
		}
	} else if idx := strings.Index(line, firstPaperID); idx >= 0 {
		cut = idx
	}

	subject := line[:cut]
	if dateLoc != nil && dateLoc[0] < len(subject) {
		end := dateLoc[1]
		if end > len(subject) {
			end = len(subject)
		}
		subject = subject[:dateLoc[0]] + subject[end:]
	}

	return textscan.TrimNoise(textscan.CollapseSpaces(subject))
}
