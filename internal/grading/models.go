package grading

type Criterion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportCard is the persisted record of a generated boleta. Scores map
// criterion name to a 0-10 grade; the rendered document lives behind the
// storage gateway.
type ReportCard struct {
	ID           string             `json:"id"`
	StudentID    string             `json:"student_id"`
	Period       string             `json:"period"`
	Scores       map[string]float64 `json:"scores"`
	Average      float64            `json:"average"`
	Observations string             `json:"observations,omitempty"`
	FileKey      string             `json:"file_key"`
	FileRemote   bool               `json:"file_remote"`
	CreatedAt    int64              `json:"created_at"`
}
