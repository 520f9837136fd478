package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// TableRow is one line of the patients table. Totals are in cents.
type TableRow struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone"`
	TotalInvoices int64     `json:"total_invoices"`
	TotalPending  int64     `json:"total_pending"`
	TotalPaid     int64     `json:"total_paid"`
}

// Option is a patient as offered in a select input.
type Option struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// InvoiceHistoryItem is one of a patient's invoices. Amount is in cents.
type InvoiceHistoryItem struct {
	ID         uuid.UUID `json:"id"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	DoctorName string    `json:"doctor"`
	Name       string    `json:"name"`
}
