package invoice

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice is a stored invoice. Amount is in cents.
type Invoice struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
}

// Editable is an invoice as loaded into the edit form; Amount is in major
// units so it can be shown and resubmitted unchanged.
type Editable struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patientId"`
	DoctorID  uuid.UUID `json:"doctorId"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
}

// Row is an invoice joined with its patient and doctor. Amount is in cents.
type Row struct {
	ID          uuid.UUID `json:"id"`
	Amount      int64     `json:"amount"`
	PatientName string    `json:"name"`
	Phone       *string   `json:"phone"`
	DoctorName  string    `json:"doctor"`
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
}
