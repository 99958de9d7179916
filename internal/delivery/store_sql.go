package delivery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("delivery not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, d Delivery) (Delivery, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (id,student_id,student_name,grade_group,title,file_key,file_remote,stars,comments,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,0,'',$8)`,
		d.ID, d.StudentID, d.StudentName, d.GradeGroup, d.Title, d.FileKey, d.FileRemote, d.CreatedAt)
	if err != nil {
		return Delivery{}, err
	}
	return d, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Delivery, error) {
	var d Delivery
	err := s.db.QueryRowContext(ctx,
		`SELECT id,student_id,student_name,grade_group,title,file_key,file_remote,stars,comments,created_at
		 FROM deliveries WHERE id=$1`, id).
		Scan(&d.ID, &d.StudentID, &d.StudentName, &d.GradeGroup, &d.Title, &d.FileKey,
			&d.FileRemote, &d.Stars, &d.Comments, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Delivery{}, ErrNotFound
	}
	return d, err
}

// List returns deliveries, filtered by student when studentID is non-empty.
func (s *SQLStore) List(ctx context.Context, studentID string) ([]Delivery, error) {
	q := `SELECT id,student_id,student_name,grade_group,title,file_key,file_remote,stars,comments,created_at
	      FROM deliveries`
	args := []any{}
	if studentID != "" {
		q += ` WHERE student_id=$1`
		args = append(args, studentID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.StudentID, &d.StudentName, &d.GradeGroup, &d.Title,
			&d.FileKey, &d.FileRemote, &d.Stars, &d.Comments, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) Review(ctx context.Context, id string, stars int, comments string) error {
	if stars < 0 || stars > 5 {
		return fmt.Errorf("stars out of range: %d", stars)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE deliveries SET stars=$1, comments=$2 WHERE id=$3`, stars, comments, id)
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

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE id=$1`, id)
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
