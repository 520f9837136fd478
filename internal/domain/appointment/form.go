package appointment

import "strings"

type Form struct {
	PatientID       string `json:"patientId" form:"patientId" validate:"required,uuid"`
	DoctorID        string `json:"doctorId" form:"doctorId" validate:"required,uuid"`
	AppointmentDate string `json:"appointment_date" form:"appointment_date" validate:"required,timestamp"`
	Reason          string `json:"reason" form:"reason" validate:"required"`
}

func (f *Form) normalize() {
	f.PatientID = strings.TrimSpace(f.PatientID)
	f.DoctorID = strings.TrimSpace(f.DoctorID)
	f.AppointmentDate = strings.TrimSpace(f.AppointmentDate)
	f.Reason = strings.TrimSpace(f.Reason)
}

var formMessages = map[string]string{
	"patientId":        ".Please select a patient",
	"doctorId":         ".Please select a doctor",
	"appointment_date": ".Please select a appointment date",
	"reason":           ".Please enter a reason for the visit",
}
