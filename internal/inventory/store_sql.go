package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("equipment not found")

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, e Equipment) (Equipment, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Condition == "" {
		e.Condition = ConditionFunctional
	}
	// Label payload; clients render the QR image from this.
	if e.QRData == "" {
		e.QRData = fmt.Sprintf("equipo:%s|%s %s", e.ID, e.Brand, e.Model)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO equipment (id,kind,brand,model,condition,qr_data) VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Kind, e.Brand, e.Model, e.Condition, e.QRData)
	if err != nil {
		return Equipment{}, err
	}
	return e, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Equipment, error) {
	var e Equipment
	err := s.db.QueryRowContext(ctx,
		`SELECT id,kind,brand,model,condition,qr_data FROM equipment WHERE id=$1`, id).
		Scan(&e.ID, &e.Kind, &e.Brand, &e.Model, &e.Condition, &e.QRData)
	if errors.Is(err, sql.ErrNoRows) {
		return Equipment{}, ErrNotFound
	}
	return e, err
}

func (s *SQLStore) List(ctx context.Context) ([]Equipment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,kind,brand,model,condition,qr_data FROM equipment ORDER BY kind, brand`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Equipment
	for rows.Next() {
		var e Equipment
		if err := rows.Scan(&e.ID, &e.Kind, &e.Brand, &e.Model, &e.Condition, &e.QRData); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ReportFault opens a maintenance record and flips the equipment condition.
func (s *SQLStore) ReportFault(ctx context.Context, equipmentID, fault string) (Maintenance, error) {
	if _, err := s.Get(ctx, equipmentID); err != nil {
		return Maintenance{}, err
	}
	m := Maintenance{
		ID:          uuid.NewString(),
		EquipmentID: equipmentID,
		Fault:       fault,
		ReportedAt:  time.Now().Unix(),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Maintenance{}, err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO maintenance (id,equipment_id,fault,reported_at,solution) VALUES ($1,$2,$3,$4,'')`,
		m.ID, m.EquipmentID, m.Fault, m.ReportedAt)
	if err != nil {
		return Maintenance{}, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE equipment SET condition=$1 WHERE id=$2`, ConditionInRepair, equipmentID)
	if err != nil {
		return Maintenance{}, err
	}
	return m, tx.Commit()
}

// CloseRepair records the fix and restores the equipment condition.
func (s *SQLStore) CloseRepair(ctx context.Context, maintenanceID, solution string) error {
	var equipmentID string
	err := s.db.QueryRowContext(ctx,
		`SELECT equipment_id FROM maintenance WHERE id=$1`, maintenanceID).Scan(&equipmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx,
		`UPDATE maintenance SET repaired_at=$1, solution=$2 WHERE id=$3`,
		time.Now().Unix(), solution, maintenanceID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE equipment SET condition=$1 WHERE id=$2`, ConditionFunctional, equipmentID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) ListMaintenance(ctx context.Context, equipmentID string) ([]Maintenance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,equipment_id,fault,reported_at,repaired_at,solution
		 FROM maintenance WHERE equipment_id=$1 ORDER BY reported_at DESC`, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Maintenance
	for rows.Next() {
		var m Maintenance
		if err := rows.Scan(&m.ID, &m.EquipmentID, &m.Fault, &m.ReportedAt, &m.RepairedAt, &m.Solution); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
