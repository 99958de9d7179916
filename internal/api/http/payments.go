package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/payment"
)

type PaymentStore interface {
	Create(ctx context.Context, p payment.Payment) (payment.Payment, error)
	Get(ctx context.Context, id string) (payment.Payment, error)
	ListByStudent(ctx context.Context, studentID string) ([]payment.Payment, error)
	Register(ctx context.Context, paymentID string, r payment.Receipt) (payment.Payment, payment.Receipt, error)
	GetReceipt(ctx context.Context, id string) (payment.Receipt, error)
	SetReceiptFile(ctx context.Context, id, key string, remote bool) error
}

func MountPayments(r chi.Router, store PaymentStore, students studentLookup, gw FileGateway, events *audit.Log) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string  `json:"student_id"`
			Concept   string  `json:"concept"`
			Total     float64 `json:"total"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.StudentID == "" || req.Concept == "" || req.Total <= 0 {
			http.Error(w, "student_id, concept and a positive total required", http.StatusBadRequest)
			return
		}
		if _, err := students.Get(r.Context(), req.StudentID); err != nil {
			http.Error(w, "unknown student", http.StatusNotFound)
			return
		}
		p, err := store.Create(r.Context(), payment.Payment{
			StudentID: req.StudentID,
			Concept:   req.Concept,
			Total:     req.Total,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		studentID := r.URL.Query().Get("student_id")
		if studentID == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}
		out, err := store.ListByStudent(r.Context(), studentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, payment.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	// Registering a payment applies the amount, writes the receipt row and
	// renders the receipt document. The document store is best-effort: a
	// failed render leaves the receipt row without a file.
	r.Post("/{id}/receipts", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount float64 `json:"amount"`
			Method string  `json:"method"`
			Notes  string  `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Method == "" {
			req.Method = "efectivo"
		}
		actor := auth.SubjectFromContext(r.Context())
		p, rcpt, err := store.Register(r.Context(), chi.URLParam(r, "id"), payment.Receipt{
			Amount:     req.Amount,
			Method:     req.Method,
			Notes:      req.Notes,
			ReceivedBy: actor,
		})
		if errors.Is(err, payment.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, payment.ErrNonPositiveAmount) || errors.Is(err, payment.ErrOverpayment) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		studentName, gradeGroup := "", ""
		if st, err := students.Get(r.Context(), p.StudentID); err == nil {
			studentName, gradeGroup = st.FullName, st.GradeGroup
		}
		doc := payment.RenderReceipt(rcpt, p, studentName, gradeGroup)
		ref, err := gw.Store(r.Context(), bytes.NewReader(doc.Bytes()), payment.ReceiptFilename(rcpt.Number))
		if err != nil {
			log.Printf("payments: store receipt %s: %v", rcpt.Number, err)
		} else {
			if err := store.SetReceiptFile(r.Context(), rcpt.ID, ref.Key, ref.Remote()); err != nil {
				log.Printf("payments: record receipt file %s: %v", rcpt.ID, err)
			} else {
				rcpt.FileKey = ref.Key
				rcpt.FileRemote = ref.Remote()
			}
		}
		events.Record(r.Context(), audit.TypePaymentRegistered, rcpt.Number, actor,
			map[string]any{"payment_id": p.ID, "amount": rcpt.Amount, "status": p.Status})
		writeJSON(w, http.StatusCreated, map[string]any{"payment": p, "receipt": rcpt})
	})

}

// MountReceipts exposes receipt rows and their rendered documents on their
// own route, keyed by receipt id rather than payment id.
func MountReceipts(r chi.Router, store PaymentStore, gw FileGateway) {
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		rcpt, err := store.GetReceipt(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, payment.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rcpt)
	})

	r.Get("/{id}/file", func(w http.ResponseWriter, r *http.Request) {
		rcpt, err := store.GetReceipt(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		serveFile(w, r, gw, rcpt.FileKey, rcpt.FileRemote, rcpt.FileKey)
	})
}
