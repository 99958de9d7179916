package student

type Student struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	GradeGroup   string `json:"grade_group"` // e.g. "3A"
	PasswordHash string `json:"-"`
	Active       bool   `json:"active"`
	PhotoKey     string `json:"photo_key,omitempty"`
	PhotoRemote  bool   `json:"photo_remote,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}
