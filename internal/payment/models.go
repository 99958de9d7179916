package payment

// Payment status values, derived from amounts, never set directly.
const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

type Payment struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Concept   string  `json:"concept"`
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"created_at"`
}

func (p Payment) Pending() float64 { return p.Total - p.Paid }

// Receipt records one registered payment against a Payment. The rendered
// receipt document lives behind the storage gateway.
type Receipt struct {
	ID         string  `json:"id"`
	PaymentID  string  `json:"payment_id"`
	Number     string  `json:"number"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	Notes      string  `json:"notes,omitempty"`
	ReceivedBy string  `json:"received_by"`
	FileKey    string  `json:"file_key"`
	FileRemote bool    `json:"file_remote"`
	CreatedAt  int64   `json:"created_at"`
}
