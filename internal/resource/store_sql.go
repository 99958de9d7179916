package resource

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, r Resource) (Resource, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (id,title,description,grade_group,file_key,file_remote,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.Title, r.Description, r.GradeGroup, r.FileKey, r.FileRemote, r.CreatedAt)
	if err != nil {
		return Resource{}, err
	}
	return r, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Resource, error) {
	var r Resource
	err := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,grade_group,file_key,file_remote,created_at
		 FROM resources WHERE id=$1`, id).
		Scan(&r.ID, &r.Title, &r.Description, &r.GradeGroup, &r.FileKey, &r.FileRemote, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resource{}, ErrNotFound
	}
	return r, err
}

// List returns resources visible to a grade group: group-specific ones plus
// the ones shared with everyone. Empty gradeGroup lists all.
func (s *SQLStore) List(ctx context.Context, gradeGroup string) ([]Resource, error) {
	q := `SELECT id,title,description,grade_group,file_key,file_remote,created_at FROM resources`
	args := []any{}
	if gradeGroup != "" {
		q += ` WHERE grade_group=$1 OR grade_group=''`
		args = append(args, gradeGroup)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.GradeGroup, &r.FileKey, &r.FileRemote, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
