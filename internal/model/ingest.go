package model

// SkipReason classifies a consumed line that produced no event.
type SkipReason string

const (
	SkipReasonEmptyLine       SkipReason = "empty_line"
	SkipReasonJSONError       SkipReason = "json_error"
	SkipReasonNonObject       SkipReason = "non_object"
	SkipReasonIncompleteLine  SkipReason = "incomplete_line"
	SkipReasonValidationError SkipReason = "validation_error"
)

// Stats counts per-line outcomes of a batch, a drained file or a scan pass.
// It is never persisted.
type Stats struct {
	EmptyLines       int `json:"empty_lines"`
	JSONErrors       int `json:"json_errors"`
	NonObject        int `json:"non_object"`
	IncompleteLines  int `json:"incomplete_lines"`
	ValidationErrors int `json:"validation_errors"`
}

func (s *Stats) Add(o Stats) {
	s.EmptyLines += o.EmptyLines
	s.JSONErrors += o.JSONErrors
	s.NonObject += o.NonObject
	s.IncompleteLines += o.IncompleteLines
	s.ValidationErrors += o.ValidationErrors
}

func (s *Stats) Inc(reason SkipReason) {
	switch reason {
	case SkipReasonEmptyLine:
		s.EmptyLines++
	case SkipReasonJSONError:
		s.JSONErrors++
	case SkipReasonNonObject:
		s.NonObject++
	case SkipReasonIncompleteLine:
		s.IncompleteLines++
	case SkipReasonValidationError:
		s.ValidationErrors++
	}
}

// ByReason returns the non-zero counters keyed by reason.
func (s Stats) ByReason() map[SkipReason]int {
	m := make(map[SkipReason]int, 5)
	for reason, n := range map[SkipReason]int{
		SkipReasonEmptyLine:       s.EmptyLines,
		SkipReasonJSONError:       s.JSONErrors,
		SkipReasonNonObject:       s.NonObject,
		SkipReasonIncompleteLine:  s.IncompleteLines,
		SkipReasonValidationError: s.ValidationErrors,
	} {
		if n > 0 {
			m[reason] = n
		}
	}
	return m
}

type BatchResult struct {
	InsertedCount int    `json:"inserted_count"`
	NewOffset     int64  `json:"new_offset"`
	Inode         *int64 `json:"inode"`
	Progressed    bool   `json:"progressed"`
	Stats         Stats  `json:"stats"`
}

type FileResult struct {
	InsertedCount int   `json:"inserted_count"`
	BatchCount    int   `json:"batch_count"`
	Stats         Stats `json:"stats"`
}

type IngestResult struct {
	RunID         int64                 `json:"run_id"`
	FilesScanned  int                   `json:"files_scanned"`
	FilesFailed   int                   `json:"files_failed"`
	TotalInserted int                   `json:"total_inserted"`
	TotalBatches  int                   `json:"total_batches"`
	Stats         Stats                 `json:"stats"`
	PerFile       map[string]FileResult `json:"per_file"`
}
