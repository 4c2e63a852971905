package datesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examsched/internal/config"
	"examsched/pkg/contracts/domain"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(config.DefaultParsing(), nil)
}

func TestParse_DateContextCarriesAcrossLines(t *testing.T) {
	p := newTestParser(t)

	pages := []string{
		"01.09.2025\nEnglish Literature ENG-101 54321\nUrdu URD-102 67890",
	}

	entries, stats := p.Parse(pages)

	require.Len(t, entries, 2)
	assert.Equal(t, domain.ExamEntry{
		PaperID:     "54321",
		ExamDate:    "01.09.2025",
		SubjectName: "English Literature",
		PaperCode:   "ENG-101",
	}, entries["54321"])
	assert.Equal(t, "01.09.2025", entries["67890"].ExamDate)
	assert.Equal(t, "Urdu", entries["67890"].SubjectName)
	assert.Empty(t, stats.Warnings)
}

func TestParse_DateAndEntryOnSameLine(t *testing.T) {
	p := newTestParser(t)

	entries, _ := p.Parse([]string{"02.09.2025 Mathematics MATH-201 11223"})

	require.Contains(t, entries, "11223")
	entry := entries["11223"]
	assert.Equal(t, "02.09.2025", entry.ExamDate)
	assert.Equal(t, "Mathematics", entry.SubjectName)
	assert.Equal(t, "MATH-201", entry.PaperCode)
}

func TestParse_DashDatesNormalized(t *testing.T) {
	p := newTestParser(t)

	dotted, _ := p.Parse([]string{"05.09.2025 Physics 33445"})
	dashed, _ := p.Parse([]string{"05-09-2025 Physics 33445"})

	require.Contains(t, dotted, "33445")
	require.Contains(t, dashed, "33445")
	assert.Equal(t, dotted["33445"], dashed["33445"])
	assert.Equal(t, "05.09.2025", dashed["33445"].ExamDate)
}

func TestParse_DashDateNotTakenAsPaperCode(t *testing.T) {
	p := newTestParser(t)

	entries, _ := p.Parse([]string{"05-09-2025 Chemistry 33445"})

	require.Contains(t, entries, "33445")
	assert.Empty(t, entries["33445"].PaperCode)
	assert.Equal(t, "Chemistry", entries["33445"].SubjectName)
}

func TestParse_PaperIDBeforeAnyDateIsDropped(t *testing.T) {
	p := newTestParser(t)

	pages := []string{
		"Orientation session 54321\n01.09.2025\nEnglish ENG-101 67890",
	}

	entries, stats := p.Parse(pages)

	assert.NotContains(t, entries, "54321")
	assert.Contains(t, entries, "67890")
	assert.Equal(t, []string{"54321"}, stats.DroppedNoDate)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "54321")
	assert.Contains(t, stats.Warnings[0], "without a preceding date")
}

func TestParse_DuplicatePaperIDKeepsLastDate(t *testing.T) {
	p := newTestParser(t)

	pages := []string{
		"01.09.2025\nPhysics 99999\n08.09.2025\nPhysics Makeup 99999",
	}

	entries, stats := p.Parse(pages)

	require.Contains(t, entries, "99999")
	assert.Equal(t, "08.09.2025", entries["99999"].ExamDate)
	assert.Equal(t, []string{"99999"}, stats.Conflicts)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "keeping 08.09.2025")
}

func TestParse_DuplicateUnderSameDateIsNotAConflict(t *testing.T) {
	p := newTestParser(t)

	entries, stats := p.Parse([]string{"01.09.2025\nEnglish 54321\nEnglish 54321"})

	assert.Contains(t, entries, "54321")
	assert.Empty(t, stats.Conflicts)
	assert.Empty(t, stats.Warnings)
}

func TestParse_AutoRescanWhenDatesAreNotLineAnchored(t *testing.T) {
	p := newTestParser(t)

	// Extraction noise before the date defeats the anchored pass.
	entries, _ := p.Parse([]string{"Session 2025 01.09.2025 English 54321"})

	require.Contains(t, entries, "54321")
	assert.Equal(t, "01.09.2025", entries["54321"].ExamDate)
}

func TestParse_LineStartAnchorDoesNotRescan(t *testing.T) {
	cfg := config.DefaultParsing()
	cfg.DateAnchor = config.AnchorLineStart
	p := NewParser(cfg, nil)

	entries, stats := p.Parse([]string{"Session 2025 01.09.2025 English 54321"})

	assert.Empty(t, entries)
	assert.Equal(t, []string{"54321"}, stats.DroppedNoDate)
}

func TestParse_MultiplePagesAndEmptyInput(t *testing.T) {
	p := newTestParser(t)

	entries, stats := p.Parse([]string{
		"01.09.2025\nEnglish 54321",
		"",
		"02.09.2025\nUrdu 67890",
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "01.09.2025", entries["54321"].ExamDate)
	assert.Equal(t, "02.09.2025", entries["67890"].ExamDate)
	assert.Equal(t, 4, stats.Lines)

	empty, _ := p.Parse(nil)
	assert.Empty(t, empty)
}

func TestParse_Idempotent(t *testing.T) {
	p := newTestParser(t)
	pages := []string{"01.09.2025\nEnglish ENG-101 54321\nUrdu 67890"}

	first, _ := p.Parse(pages)
	second, _ := p.Parse(pages)

	assert.Equal(t, first, second)
}

func TestParse_MultipleIDsOnOneLineShareTheEntry(t *testing.T) {
	p := newTestParser(t)

	entries, _ := p.Parse([]string{"03.09.2025\nIslamiat ISL-301 44556 55667"})

	require.Len(t, entries, 2)
	for _, pid := range []string{"44556", "55667"} {
		assert.Equal(t, "03.09.2025", entries[pid].ExamDate)
		assert.Equal(t, "Islamiat", entries[pid].SubjectName)
		assert.Equal(t, "ISL-301", entries[pid].PaperCode)
	}
}
