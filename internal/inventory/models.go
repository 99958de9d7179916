package inventory

// Equipment condition values.
const (
	ConditionFunctional = "functional"
	ConditionInRepair   = "in_repair"
	ConditionRetired    = "retired"
)

type Equipment struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"` // e.g. "laptop", "projector"
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	Condition string `json:"condition"`
	QRData    string `json:"qr_data,omitempty"` // payload encoded on the printed label
}

type Maintenance struct {
	ID          string `json:"id"`
	EquipmentID string `json:"equipment_id"`
	Fault       string `json:"fault"`
	ReportedAt  int64  `json:"reported_at"`
	RepairedAt  *int64 `json:"repaired_at,omitempty"`
	Solution    string `json:"solution,omitempty"`
}
