package payment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("payment not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, p Payment) (Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Status = StatusPending
	p.Paid = 0
	p.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id,student_id,concept,total,paid,status,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.StudentID, p.Concept, p.Total, p.Paid, p.Status, p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Payment, error) {
	var p Payment
	err := s.db.QueryRowContext(ctx,
		`SELECT id,student_id,concept,total,paid,status,created_at FROM payments WHERE id=$1`, id).
		Scan(&p.ID, &p.StudentID, &p.Concept, &p.Total, &p.Paid, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

func (s *SQLStore) ListByStudent(ctx context.Context, studentID string) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,student_id,concept,total,paid,status,created_at
		 FROM payments WHERE student_id=$1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Concept, &p.Total, &p.Paid, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Register applies an amount to a payment and records the receipt row in
// one transaction. The receipt number is derived from a fresh uuid.
func (s *SQLStore) Register(ctx context.Context, paymentID string, r Receipt) (Payment, Receipt, error) {
	p, err := s.Get(ctx, paymentID)
	if err != nil {
		return Payment{}, Receipt{}, err
	}
	p, err = Apply(p, r.Amount)
	if err != nil {
		return Payment{}, Receipt{}, err
	}

	r.ID = uuid.NewString()
	r.PaymentID = paymentID
	if r.Number == "" {
		r.Number = "R-" + strings.ToUpper(r.ID[:8])
	}
	r.CreatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Payment{}, Receipt{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE payments SET paid=$1, status=$2 WHERE id=$3`, p.Paid, p.Status, p.ID)
	if err != nil {
		return Payment{}, Receipt{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id,payment_id,number,amount,method,notes,received_by,file_key,file_remote,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, r.PaymentID, r.Number, r.Amount, r.Method, r.Notes, r.ReceivedBy,
		r.FileKey, r.FileRemote, r.CreatedAt)
	if err != nil {
		return Payment{}, Receipt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Payment{}, Receipt{}, err
	}
	return p, r, nil
}

func (s *SQLStore) GetReceipt(ctx context.Context, id string) (Receipt, error) {
	var r Receipt
	err := s.db.QueryRowContext(ctx,
		`SELECT id,payment_id,number,amount,method,notes,received_by,file_key,file_remote,created_at
		 FROM receipts WHERE id=$1`, id).
		Scan(&r.ID, &r.PaymentID, &r.Number, &r.Amount, &r.Method, &r.Notes, &r.ReceivedBy,
			&r.FileKey, &r.FileRemote, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, ErrNotFound
	}
	return r, err
}

// SetReceiptFile records where the rendered receipt document landed.
func (s *SQLStore) SetReceiptFile(ctx context.Context, id, key string, remote bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE receipts SET file_key=$1, file_remote=$2 WHERE id=$3`, key, remote, id)
	return err
}
