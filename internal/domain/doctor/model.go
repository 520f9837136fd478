package doctor

import "github.com/google/uuid"

// Doctor is reference data seeded outside the application.
type Doctor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
