package payment

import "time"

// Transaction and notification statuses.
const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusRejected   = "REJECTED"
	StatusFailed     = "FAILED"
	StatusIncomplete = "INCOMPLETE"
)

// Transaction is one outbound checkout as it was signed and handed to the browser.
type Transaction struct {
	ID          int64
	SessionID   string
	MerchantID  string
	Amount      int64
	Currency    string
	Description string
	Email       string
	Sign        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
