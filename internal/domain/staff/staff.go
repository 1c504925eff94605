package staff

import (
	"time"

	"github.com/google/uuid"
)

// Role scopes a staff member to a campus section and duty. Front-desk
// roles may only search and check in students of their own section;
// enforcement lives in the admin layer, the directory just records it.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleMaleSectionAdmin Role = "male_section_admin"
	RoleFemaleSectionAdm Role = "female_section_admin"
	RoleMaleFrontDesk    Role = "male_front_desk"
	RoleFemaleFrontDesk  Role = "female_front_desk"
)

// Member represents a staff member in the directory
type Member struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateMemberRequest represents the request to add a staff member
type CreateMemberRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=super_admin male_section_admin female_section_admin male_front_desk female_front_desk"`
}

// UpdateMemberRequest represents the request to update a staff member
type UpdateMemberRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Role   *Role   `json:"role,omitempty" validate:"omitempty,oneof=super_admin male_section_admin female_section_admin male_front_desk female_front_desk"`
	Active *bool   `json:"active,omitempty"`
}

// NewMember creates a staff member with a generated ID and timestamps
func NewMember(name, email string, role Role) *Member {
	now := time.Now()
	return &Member{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsFrontDesk reports whether the member works the check-in desk.
func (m *Member) IsFrontDesk() bool {
	return m.Role == RoleMaleFrontDesk || m.Role == RoleFemaleFrontDesk
}
