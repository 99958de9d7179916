package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("student not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.Active = true
	st.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id,username,full_name,grade_group,password_hash,active,photo_key,photo_remote,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,'',$7,$8)`,
		st.ID, st.Username, st.FullName, st.GradeGroup, st.PasswordHash, st.Active, false, st.CreatedAt)
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Student, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id,username,full_name,grade_group,password_hash,active,photo_key,photo_remote,created_at
		 FROM students WHERE id=$1`, id))
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (Student, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id,username,full_name,grade_group,password_hash,active,photo_key,photo_remote,created_at
		 FROM students WHERE username=$1`, username))
}

func (s *SQLStore) scanOne(row *sql.Row) (Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.Username, &st.FullName, &st.GradeGroup, &st.PasswordHash,
		&st.Active, &st.PhotoKey, &st.PhotoRemote, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return st, err
}

// List returns students, optionally filtered by grade group, ordered by name.
func (s *SQLStore) List(ctx context.Context, gradeGroup string) ([]Student, error) {
	q := `SELECT id,username,full_name,grade_group,password_hash,active,photo_key,photo_remote,created_at
	      FROM students`
	args := []any{}
	if gradeGroup != "" {
		q += ` WHERE grade_group=$1`
		args = append(args, gradeGroup)
	}
	q += ` ORDER BY full_name`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Username, &st.FullName, &st.GradeGroup, &st.PasswordHash,
			&st.Active, &st.PhotoKey, &st.PhotoRemote, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, st Student) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET full_name=$1, grade_group=$2, active=$3 WHERE id=$4`,
		st.FullName, st.GradeGroup, st.Active, st.ID)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrNotFound)
}

func (s *SQLStore) SetPassword(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE students SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrNotFound)
}

func (s *SQLStore) SetPhoto(ctx context.Context, id, key string, remote bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET photo_key=$1, photo_remote=$2 WHERE id=$3`, key, remote, id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrNotFound)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrNotFound)
}

func oneRowOr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
