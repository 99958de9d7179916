package grading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("report card not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutCriterion(ctx context.Context, c Criterion) (Criterion, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grading_criteria (id,name) VALUES ($1,$2)
		 ON CONFLICT (name) DO NOTHING`, c.ID, c.Name)
	if err != nil {
		return Criterion{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCriteria(ctx context.Context) ([]Criterion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name FROM grading_criteria ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteCriterion(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM grading_criteria WHERE id=$1`, id)
	return err
}

func (s *SQLStore) CreateReportCard(ctx context.Context, rc ReportCard) (ReportCard, error) {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
	rc.CreatedAt = time.Now().Unix()
	sj, err := json.Marshal(rc.Scores)
	if err != nil {
		return ReportCard{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_cards (id,student_id,period,scores_json,average,observations,file_key,file_remote,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rc.ID, rc.StudentID, rc.Period, string(sj), rc.Average, rc.Observations,
		rc.FileKey, rc.FileRemote, rc.CreatedAt)
	if err != nil {
		return ReportCard{}, err
	}
	return rc, nil
}

func (s *SQLStore) GetReportCard(ctx context.Context, id string) (ReportCard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,student_id,period,scores_json,average,observations,file_key,file_remote,created_at
		 FROM report_cards WHERE id=$1`, id)
	return scanReportCard(row.Scan)
}

func (s *SQLStore) ListReportCards(ctx context.Context, studentID string) ([]ReportCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,student_id,period,scores_json,average,observations,file_key,file_remote,created_at
		 FROM report_cards WHERE student_id=$1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReportCard
	for rows.Next() {
		rc, err := scanReportCard(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func scanReportCard(scan func(...any) error) (ReportCard, error) {
	var rc ReportCard
	var sj string
	err := scan(&rc.ID, &rc.StudentID, &rc.Period, &sj, &rc.Average, &rc.Observations,
		&rc.FileKey, &rc.FileRemote, &rc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ReportCard{}, ErrNotFound
	}
	if err != nil {
		return ReportCard{}, err
	}
	if err := json.Unmarshal([]byte(sj), &rc.Scores); err != nil {
		return ReportCard{}, err
	}
	return rc, nil
}
