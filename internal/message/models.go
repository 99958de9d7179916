package message

type Message struct {
	ID            string `json:"id"`
	SenderID      string `json:"sender_id"`
	SenderRole    string `json:"sender_role"`
	RecipientID   string `json:"recipient_id"`
	RecipientRole string `json:"recipient_role"`
	Body          string `json:"body"`
	Read          bool   `json:"read"`
	CreatedAt     int64  `json:"created_at"`
}
