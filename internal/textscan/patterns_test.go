package textscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examsched/internal/config"
)

func TestCompile_PaperID(t *testing.T) {
	p := Compile(config.DefaultParsing())

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single id",
			input: "English Literature ENG-101 54321",
			want:  []string{"54321"},
		},
		{
			name:  "multiple ids on one line",
			input: "54321 67890 11223",
			want:  []string{"54321", "67890", "11223"},
		},
		{
			name:  "longer digit runs are not ids",
			input: "registration 123456789",
			want:  nil,
		},
		{
			name:  "shorter digit runs are not ids",
			input: "page 1234 of 12",
			want:  nil,
		},
		{
			name:  "id embedded in a word is not matched",
			input: "X54321Y",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.PaperID.FindAllString(tt.input, -1))
		})
	}
}

func TestCompile_PaperIDDigitsConfigurable(t *testing.T) {
	cfg := config.DefaultParsing()
	cfg.PaperIDDigits = 6

	p := Compile(cfg)

	assert.Equal(t, []string{"123456"}, p.PaperID.FindAllString("code 123456 and 54321", -1))
	assert.Equal(t, 6, p.PaperIDDigits())
}

func TestCompile_Date(t *testing.T) {
	p := Compile(config.DefaultParsing())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dot separated", "01.09.2025 Morning Session", "01.09.2025"},
		{"dash separated", "01-09-2025 Morning Session", "01-09-2025"},
		{"mid line", "Session starts 05.09.2025 sharp", "05.09.2025"},
		{"no date", "Morning Session", ""},
		{"year first is not a date", "2025.09.01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Date.FindString(tt.input))
		})
	}
}

func TestCompile_DateAtStart(t *testing.T) {
	p := Compile(config.DefaultParsing())

	assert.Equal(t, "01.09.2025", p.DateAtStart.FindString("01.09.2025 English"))
	assert.Empty(t, p.DateAtStart.FindString("Held on 01.09.2025"))
}

func TestCompile_PaperCode(t *testing.T) {
	p := Compile(config.DefaultParsing())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple code", "English ENG-101 54321", "ENG-101"},
		{"dotted prefix falls through to the inner code", "24L6.0-ENG-101 paper", "ENG-101"},
		{"four digit suffix", "CHEM-1012", "CHEM-1012"},
		{"no code", "English Literature", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.PaperCode.FindString(tt.input))
		})
	}
}

func TestCompile_RollNo(t *testing.T) {
	p := Compile(config.DefaultParsing())

	require.Equal(t, 9, p.RollNoMinDigits())
	assert.Equal(t, "123456789", p.RollNo.FindString("roll 123456789 name"))
	assert.Equal(t, "1234567890", p.RollNo.FindString("roll 1234567890 name"))
	assert.Empty(t, p.RollNo.FindString("roll 12345678 name"))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "01.09.2025", NormalizeDate("01-09-2025"))
	assert.Equal(t, "01.09.2025", NormalizeDate("01.09.2025"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "English Literature", CollapseSpaces("  English \t  Literature \n"))
	assert.Equal(t, "", CollapseSpaces("   "))
}

func TestTrimNoise(t *testing.T) {
	assert.Equal(t, "English", TrimNoise(" - English - "))
	assert.Equal(t, "A-B", TrimNoise("A-B"))
}

func TestDedupOrdered(t *testing.T) {
	assert.Equal(t, []string{"54321", "67890"}, DedupOrdered([]string{"54321", "67890", "54321"}))
	assert.Empty(t, DedupOrdered(nil))
}

func TestHasDigitRun(t *testing.T) {
	assert.True(t, HasDigitRun("code 54321 end", 5))
	assert.False(t, HasDigitRun("a1b2c3d4e5", 2))
	assert.False(t, HasDigitRun("no digits", 1))
}

func TestTrailingCapitalizedRun(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two word name", "papers for Aisha Khan", "Aisha Khan"},
		{"stops at lowercase", "listed under Bilal", "Bilal"},
		{"stops at digits", "67890 Fatima Noor", "Fatima Noor"},
		{"trailing punctuation stripped", "student Sara Malik,", "Sara Malik"},
		{"no capitalized tail", "nothing here at all", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrailingCapitalizedRun(tt.input, 6))
		})
	}
}

func TestTrailingCapitalizedRun_MaxWords(t *testing.T) {
	got := TrailingCapitalizedRun("One Two Three Four", 2)
	assert.Equal(t, "Three Four", got)
}
