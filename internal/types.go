package internal

// Status is the payment state of a receivable. It is fully determined by the
// current amounts, recomputed on every write.
type Status string

const (
	StatusRecouvre Status = "Recouvré"
	StatusPartiel  Status = "Partiellement recouvré"
	StatusCreance  Status = "Créance"
)

// Sentinels used when the source sheet carries no usable value.
const (
	NoContract  = "Pas de N°"
	NotProvided = "Non renseigné"
	UnknownDate = "Date inconnue"
	NotComputed = "Non calculé"
)

// StatusFor derives the payment status from the amounts:
// fully collected when nothing remains, partially collected when some but not
// all of the total remains, outstanding otherwise.
func StatusFor(total, remaining float64) Status {
	switch {
	case remaining <= 0:
		return StatusRecouvre
	case remaining < total:
		return StatusPartiel
	default:
		return StatusCreance
	}
}

// InsuranceRecord is one policy / receivable line. ContractNumber is the
// business key; RemainingAmount is never negative.
type InsuranceRecord struct {
	ContractNumber  string  `json:"contractNumber"`
	ClientName      string  `json:"clientName"`
	CodeAgence      string  `json:"codeAgence"`
	DateEmission    string  `json:"dateEmission"`
	DateEcheance    string  `json:"dateEcheance"`
	TotalAmount     float64 `json:"totalAmount"`
	AmountPaid      float64 `json:"amountPaid"`
	RemainingAmount float64 `json:"remainingAmount"`
	TimePassed      string  `json:"timePassed"`
	Status          Status  `json:"status"`
}

// EmailMapping resolves a client display name to a recipient address.
// Mappings are unique by email; lookup is by case-insensitive exact name.
type EmailMapping struct {
	ClientName string `json:"clientName"`
	Email      string `json:"email"`
}

// SentEmailRecord is the append-only reminder audit entry for one contract.
type SentEmailRecord struct {
	ContractNumber string `json:"contractNumber"`
	EmailSent      bool   `json:"emailSent"`
	SentAt         string `json:"sentAt,omitempty"`
}

// ImportReport summarizes one file import for the history table.
type ImportReport struct {
	TraceID  string `json:"traceId"`
	FileName string `json:"fileName"`
	Rows     int    `json:"rows"`
	Imported int    `json:"imported"`
	Merged   int    `json:"merged"`
	Appended int    `json:"appended"`
	Skipped  int    `json:"skipped"`
	TookMs   int64  `json:"tookMs"`
}

// EmailAccount identifies the sender of reminder mail. Delivery is mocked;
// the SMTP fields only end up in the rendered message headers.
type EmailAccount struct {
	Name     string
	Address  string
	SMTPHost string
	SMTPPort int
	Username string
	Password string
}
