package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ColorHex  *string   `json:"color_hex,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail is applied to every email before it is stored or compared.
// Stakeholder grants are matched to users by email, so the comparison must
// not depend on how the address was typed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
