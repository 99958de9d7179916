package attendance

// Status values for a day's record.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

type Record struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Day       string `json:"day"` // YYYY-MM-DD
	Status    string `json:"status"`

	// Joined for listings and reports.
	StudentName string `json:"student_name,omitempty"`
	GradeGroup  string `json:"grade_group,omitempty"`
}

// Report is the metadata row for a generated attendance report; the CSV
// itself lives behind the storage gateway.
type Report struct {
	ID           string `json:"id"`
	GradeGroup   string `json:"grade_group"`
	FromDay      string `json:"from_day"`
	ToDay        string `json:"to_day"`
	FileKey      string `json:"file_key"`
	FileRemote   bool   `json:"file_remote"`
	GeneratedBy  string `json:"generated_by"`
	StudentCount int    `json:"student_count"`
	RecordCount  int    `json:"record_count"`
	CreatedAt    int64  `json:"created_at"`
}
