// Package schedule joins student records against the date-sheet mapping
// by paper id.
package schedule

import (
	"examsched/pkg/contracts/domain"
)

// Build produces one row per (student, paper id) pair, in student order
// then enrollment order. It is deterministic and total: a paper id with
// no date-sheet entry yields a row carrying the not-found sentinels, so
// every enrollment is accounted for and reconciliation gaps stay visible
// in the output.
func Build(examMap map[string]domain.ExamEntry, students []domain.StudentRecord) []domain.ScheduleRow {
	var rows []domain.ScheduleRow

	for _, student := range students {
		for _, pid := range student.PaperIDs {
			row := domain.ScheduleRow{
				RollNo:      student.RollNo,
				StudentName: student.StudentName,
				PaperID:     pid,
			}
			if entry, ok := examMap[pid]; ok {
				row.ExamDate = entry.ExamDate
				row.SubjectName = entry.SubjectName
				row.PaperCode = entry.PaperCode
			} else {
				row.ExamDate = domain.DateNotFound
				row.SubjectName = domain.SubjectUnknown
			}
			rows = append(rows, row)
		}
	}

	return rows
}
