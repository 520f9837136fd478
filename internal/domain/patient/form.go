package patient

import "strings"

// Form is the submitted patient form. Type carries the flow the form was
// opened from when a patient is added inline.
type Form struct {
	Name  string `json:"name" form:"name" validate:"min=3"`
	Phone string `json:"phone" form:"phone"`
	Type  string `json:"type" form:"type"`
}

func (f *Form) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Type = strings.TrimSpace(f.Type)
}

func (f *Form) phone() *string {
	if f.Phone == "" {
		return nil
	}
	p := f.Phone
	return &p
}

var formMessages = map[string]string{
	"name": ".Please enter the patient name",
}

const phoneMessage = ".Please enter the patient phone"

// returnFlows are the create forms a new patient can be sent back to.
var returnFlows = map[string]bool{
	"appointments": true,
	"invoices":     true,
}
