package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("attendance report not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// RecordBulk upserts one day's records. A second submission for the same
// student and day replaces the earlier status.
func (s *SQLStore) RecordBulk(ctx context.Context, records []Record) ([]Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	for i := range records {
		r := &records[i]
		if !ValidStatus(r.Status) {
			return nil, fmt.Errorf("invalid attendance status %q", r.Status)
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attendance (id,student_id,day,status) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (student_id,day) DO UPDATE SET status=EXCLUDED.status`,
			r.ID, r.StudentID, r.Day, r.Status)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByGroup returns records for a grade group between fromDay and toDay
// inclusive, joined with student names. toDay may be empty (open-ended).
func (s *SQLStore) ListByGroup(ctx context.Context, gradeGroup, fromDay, toDay string) ([]Record, error) {
	q := `SELECT a.id, a.student_id, a.day, a.status, st.full_name, st.grade_group
	      FROM attendance a JOIN students st ON st.id = a.student_id
	      WHERE st.grade_group=$1 AND a.day >= $2`
	args := []any{gradeGroup, fromDay}
	if toDay != "" {
		q += ` AND a.day <= $3`
		args = append(args, toDay)
	}
	q += ` ORDER BY a.day, st.full_name`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.StudentID, &r.Day, &r.Status, &r.StudentName, &r.GradeGroup); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateReport(ctx context.Context, r Report) (Report, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_reports (id,grade_group,from_day,to_day,file_key,file_remote,generated_by,student_count,record_count,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, r.GradeGroup, r.FromDay, r.ToDay, r.FileKey, r.FileRemote, r.GeneratedBy,
		r.StudentCount, r.RecordCount, r.CreatedAt)
	if err != nil {
		return Report{}, err
	}
	return r, nil
}

func (s *SQLStore) GetReport(ctx context.Context, id string) (Report, error) {
	var r Report
	err := s.db.QueryRowContext(ctx,
		`SELECT id,grade_group,from_day,to_day,file_key,file_remote,generated_by,student_count,record_count,created_at
		 FROM attendance_reports WHERE id=$1`, id).
		Scan(&r.ID, &r.GradeGroup, &r.FromDay, &r.ToDay, &r.FileKey, &r.FileRemote,
			&r.GeneratedBy, &r.StudentCount, &r.RecordCount, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrReportNotFound
	}
	return r, err
}

func (s *SQLStore) ListReports(ctx context.Context, gradeGroup string) ([]Report, error) {
	q := `SELECT id,grade_group,from_day,to_day,file_key,file_remote,generated_by,student_count,record_count,created_at
	      FROM attendance_reports`
	args := []any{}
	if gradeGroup != "" {
		q += ` WHERE grade_group=$1`
		args = append(args, gradeGroup)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.GradeGroup, &r.FromDay, &r.ToDay, &r.FileKey, &r.FileRemote,
			&r.GeneratedBy, &r.StudentCount, &r.RecordCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
