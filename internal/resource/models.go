package resource

// Resource is a file the teacher shares with a grade group (worksheets,
// guides, installers). The file lives behind the storage gateway.
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	GradeGroup  string `json:"grade_group,omitempty"` // empty means all groups
	FileKey     string `json:"file_key"`
	FileRemote  bool   `json:"file_remote"`
	CreatedAt   int64  `json:"created_at"`
}
