package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examsched/internal/config"
	"examsched/pkg/contracts/domain"
)

const (
	sampleDateSheet = "01.09.2025\nEnglish Literature ENG-101 54321\n" +
		"02.09.2025\nUrdu URD-102 67890\n"
	sampleRollList = "Roll No: 101\nAisha Khan\nSUBJECTS: 54321 67890\n" +
		"Roll No: 102\nBilal Ahmed\nSUBJECTS: 54321 99999\n"
)

func newTestService(t *testing.T) *ScheduleService {
	t.Helper()
	return NewScheduleService(config.DefaultParsing(), nil)
}

func TestGenerateFromTexts_EndToEnd(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.GenerateFromTexts(context.Background(), ParseRequest{
		DateSheetText: sampleDateSheet,
		RollListText:  sampleRollList,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.EntryCount)
	assert.Equal(t, 2, result.StudentCount)
	assert.Equal(t, 4, result.RowCount)
	assert.Equal(t, 1, result.MissingCount)
	assert.Equal(t, "delimited-block", result.RollListStrategy)
	assert.False(t, result.Empty())

	require.Len(t, result.Rows, 4)
	assert.Equal(t, domain.ScheduleRow{
		RollNo:      "101",
		StudentName: "Aisha Khan",
		ExamDate:    "01.09.2025",
		SubjectName: "English Literature",
		PaperCode:   "ENG-101",
		PaperID:     "54321",
	}, result.Rows[0])

	missing := result.Missing()
	require.Len(t, missing, 1)
	assert.Equal(t, "99999", missing[0].PaperID)
	assert.Equal(t, domain.DateNotFound, missing[0].ExamDate)

	// Both parsers produced output, so no previews.
	assert.Empty(t, result.DateSheetPreview)
	assert.Empty(t, result.RollListPreview)
}

func TestGenerateFromTexts_ValidatesRequest(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name string
		req  ParseRequest
	}{
		{"missing date sheet", ParseRequest{RollListText: sampleRollList}},
		{"missing roll list", ParseRequest{DateSheetText: sampleDateSheet}},
		{"both missing", ParseRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GenerateFromTexts(context.Background(), tt.req)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestGenerateFromTexts_EmptyResultCarriesPreviews(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.GenerateFromTexts(context.Background(), ParseRequest{
		DateSheetText: "nothing recognizable in here",
		RollListText:  "nor in here",
	})
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Zero(t, result.EntryCount)
	assert.Zero(t, result.StudentCount)
	assert.Equal(t, "nothing recognizable in here", result.DateSheetPreview)
	assert.Equal(t, "nor in here", result.RollListPreview)
}

func TestGenerateFromTexts_PreviewTruncated(t *testing.T) {
	cfg := config.DefaultParsing()
	cfg.PreviewChars = 10
	svc := NewScheduleService(cfg, nil)

	result, err := svc.GenerateFromTexts(context.Background(), ParseRequest{
		DateSheetText: "this text has no parseable entries at all",
		RollListText:  sampleRollList,
	})
	require.NoError(t, err)

	assert.Equal(t, "this text ", result.DateSheetPreview)
	assert.Empty(t, result.RollListPreview)
}

func TestGenerateFromTexts_WarningsPropagate(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.GenerateFromTexts(context.Background(), ParseRequest{
		DateSheetText: "Orientation 11111\n" + sampleDateSheet,
		RollListText:  sampleRollList,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "11111")
}

func TestGenerateFromTexts_ForceTextMode(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.GenerateFromTexts(context.Background(), ParseRequest{
		DateSheetText: sampleDateSheet,
		RollListText:  sampleRollList,
		ForceTextMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "delimited-block", result.RollListStrategy)
}

func TestGenerateFromDocuments_NilDocuments(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateFromDocuments(context.Background(), nil, nil, false)
	assert.Error(t, err)
}

func TestGenerateFromFiles_MissingFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateFromFiles(context.Background(), "does-not-exist.pdf", "also-missing.pdf", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date sheet")
}
