package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// UserResponse is the public JSON view of an account.
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	PhoneNumber     *string   `json:"phone_number"`
	DateJoined      time.Time `json:"date_joined"`
	Region          string    `json:"region"`
	Role            Role      `json:"role"`
	ProfileComplete bool      `json:"profile_complete"`
}

// ToResponse copies the public fields of a into a UserResponse.
func ToResponse(a Account) UserResponse {
	var resp UserResponse
	_ = copier.Copy(&resp, &a)
	return resp
}
