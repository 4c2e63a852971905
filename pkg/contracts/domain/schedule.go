package domain

// Sentinel values used when a paper id cannot be reconciled against the
// date sheet. Misses are flagged, never dropped, so reconciliation gaps
// stay visible in the output.
const (
	DateNotFound   = "NOT IN DATE SHEET"
	SubjectUnknown = "UNKNOWN"
	NameUnknown    = "UNKNOWN"
)

// ExamEntry represents one examination slot extracted from the date sheet.
// The paper id is the shared key between the date sheet and the roll list.
type ExamEntry struct {
	PaperID     string `json:"paper_id" validate:"required,numeric"`
	ExamDate    string `json:"exam_date"`
	SubjectName string `json:"subject_name"`
	PaperCode   string `json:"paper_code,omitempty"`
}

// StudentRecord represents one student extracted from the roll list,
// together with the ordered set of paper ids they are enrolled in.
type StudentRecord struct {
	RollNo      string   `json:"roll_no" validate:"required,numeric"`
	StudentName string   `json:"student_name"`
	PaperIDs    []string `json:"paper_ids"`
}

// ScheduleRow is one (student, paper id) pairing enriched with exam
// metadata, or with the not-found sentinels when the paper id has no
// date-sheet entry.
type ScheduleRow struct {
	RollNo      string `json:"roll_no"`
	StudentName string `json:"student_name"`
	ExamDate    string `json:"exam_date"`
	SubjectName string `json:"subject_name"`
	PaperCode   string `json:"paper_code,omitempty"`
	PaperID     string `json:"paper_id"`
}

// Matched reports whether the row was reconciled against the date sheet.
func (r ScheduleRow) Matched() bool {
	return r.ExamDate != DateNotFound
}

// ScheduleResult is the full outcome of one merge request: the generated
// rows plus the diagnostics the caller surfaces to the user.
type ScheduleResult struct {
	Rows []ScheduleRow `json:"rows"`

	// Counts for the success banner.
	EntryCount   int `json:"entry_count"`
	StudentCount int `json:"student_count"`
	RowCount     int `json:"row_count"`
	MissingCount int `json:"missing_count"`

	// Warnings collected by the parsers (ids without a date, duplicate
	// ids whose date changed, mixed roll-number shapes).
	Warnings []string `json:"warnings,omitempty"`

	// RollListStrategy names the fallback strategy that produced the
	// student records.
	RollListStrategy string `json:"roll_list_strategy,omitempty"`

	// Raw-text previews for troubleshooting when a parser yields nothing.
	DateSheetPreview string `json:"date_sheet_preview,omitempty"`
	RollListPreview  string `json:"roll_list_preview,omitempty"`
}

// Missing returns the rows whose exam date is the not-found sentinel.
func (r *ScheduleResult) Missing() []ScheduleRow {
	var missing []ScheduleRow
	for _, row := range r.Rows {
		if !row.Matched() {
			missing = append(missing, row)
		}
	}
	return missing
}

// Empty reports the terminal empty-result condition: nothing could be
// extracted from either document.
func (r *ScheduleResult) Empty() bool {
	return len(r.Rows) == 0
}
