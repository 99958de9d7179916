package delivery

// Delivery is a homework file a student handed in. The file itself lives
// behind the storage gateway; stars and comments arrive later with the
// teacher's review.
type Delivery struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	GradeGroup  string `json:"grade_group"`
	Title       string `json:"title"`
	FileKey     string `json:"file_key"`
	FileRemote  bool   `json:"file_remote"`
	Stars       int    `json:"stars"` // 0-5
	Comments    string `json:"comments,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}
