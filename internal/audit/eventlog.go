// Package audit appends application events to an append-only log table.
// Writes are best-effort: a failed audit insert is logged, never fatal to
// the operation that produced it.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

// Event types recorded by the API layer.
const (
	TypeFileStored        = "FileStored"
	TypeFileDeleted       = "FileDeleted"
	TypeReportGenerated   = "ReportGenerated"
	TypePaymentRegistered = "PaymentRegistered"
)

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

// Record marshals data and appends one event. Errors are swallowed after
// logging so callers can fire-and-forget.
func (l *Log) Record(ctx context.Context, typ, key, actor string, data any) {
	if l == nil || l.db == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("audit: marshal %s event: %v", typ, err)
		return
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, actor, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		typ, key, actor, string(payload), time.Now().Unix())
	if err != nil {
		log.Printf("audit: append %s event: %v", typ, err)
	}
}
