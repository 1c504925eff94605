package staff

import "github.com/google/uuid"

// Repository defines the interface for staff directory data access
type Repository interface {
	Create(member *Member) error
	GetByID(id uuid.UUID) (*Member, error)
	GetByEmail(email string) (*Member, error)
	List(limit, offset int) ([]*Member, error)
	Update(member *Member) error
	Delete(id uuid.UUID) error
}

// Service defines the interface for staff directory business logic
type Service interface {
	CreateMember(req *CreateMemberRequest) (*Member, error)
	GetMember(id uuid.UUID) (*Member, error)
	UpdateMember(id uuid.UUID, req *UpdateMemberRequest) (*Member, error)
	DeleteMember(id uuid.UUID) error
	ListMembers(limit, offset int) ([]*Member, error)
}
