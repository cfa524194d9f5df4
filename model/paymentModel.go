// model/payment.go
package model

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
)

type PaymentType string

const (
	TypePayment PaymentType = "PAYMENT"
	TypeFine    PaymentType = "FINE"
)

// Payment rows are written by the external payment provider flow; this API
// only ever reads them.
type Payment struct {
	ID          int64         `json:"id"`
	BorrowingID int64         `json:"borrowing_id"`
	Status      PaymentStatus `json:"status"`
	Type        PaymentType   `json:"type"`
	SessionURL  string        `json:"session_url"`
	SessionID   string        `json:"session_id"`
	MoneyToPay  float64       `json:"money_to_pay"`
}
