package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Reason          string    `json:"reason"`
	Date            time.Time `json:"date"`
}

// Row is one line of the appointments table, joined with the patient and
// doctor it references.
type Row struct {
	ID              uuid.UUID `json:"id"`
	PatientName     string    `json:"name"`
	Phone           *string   `json:"phone"`
	DoctorName      string    `json:"doctor"`
	AppointmentDate time.Time `json:"appointment_date"`
	Reason          string    `json:"reason"`
	Date            time.Time `json:"date"`
}
