package invoice

import "strings"

type Form struct {
	PatientID string `json:"patientId" form:"patientId" validate:"required,uuid"`
	DoctorID  string `json:"doctorId" form:"doctorId" validate:"required,uuid"`
	Amount    string `json:"amount" form:"amount" validate:"amount"`
	Status    string `json:"status" form:"status" validate:"oneof=pending paid"`
	Reason    string `json:"reason" form:"reason" validate:"required"`
}

func (f *Form) normalize() {
	f.PatientID = strings.TrimSpace(f.PatientID)
	f.DoctorID = strings.TrimSpace(f.DoctorID)
	f.Amount = strings.TrimSpace(f.Amount)
	f.Status = strings.TrimSpace(f.Status)
	f.Reason = strings.TrimSpace(f.Reason)
}

var formMessages = map[string]string{
	"patientId": ".Please select a patient",
	"doctorId":  ".Please select a doctor",
	"amount":    ".Amount must be greater than 0",
	"status":    ".Please select an invoice status",
	"reason":    ".Please enter a reason for the visit",
}
