package repository

import (
	"errors"
	"sync"
	"time"

	"campus-intake/internal/domain/staff"

	"github.com/google/uuid"
)

// mockStaffRepository is an in-memory implementation of staff.Repository
// for testing/demo purposes
type mockStaffRepository struct {
	members map[uuid.UUID]*staff.Member
	mutex   sync.RWMutex
}

// NewMockStaffRepository creates a new mock staff repository
func NewMockStaffRepository() staff.Repository {
	repo := &mockStaffRepository{
		members: make(map[uuid.UUID]*staff.Member),
		mutex:   sync.RWMutex{},
	}

	// Add some sample data
	repo.seedData()
	return repo
}

// Create adds a new staff member
func (r *mockStaffRepository) Create(member *staff.Member) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.members[member.ID]; exists {
		return errors.New("staff member already exists")
	}

	for _, existing := range r.members {
		if existing.Email == member.Email {
			return errors.New("email already exists")
		}
	}

	r.members[member.ID] = member
	return nil
}

// GetByID retrieves a staff member by ID
func (r *mockStaffRepository) GetByID(id uuid.UUID) (*staff.Member, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	member, exists := r.members[id]
	if !exists {
		return nil, errors.New("staff member not found")
	}

	return member, nil
}

// GetByEmail retrieves a staff member by email
func (r *mockStaffRepository) GetByEmail(email string) (*staff.Member, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, member := range r.members {
		if member.Email == email {
			return member, nil
		}
	}

	return nil, errors.New("staff member not found")
}

// Update updates an existing staff member
func (r *mockStaffRepository) Update(member *staff.Member) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.members[member.ID]; !exists {
		return errors.New("staff member not found")
	}

	for id, existing := range r.members {
		if id != member.ID && existing.Email == member.Email {
			return errors.New("email already exists")
		}
	}

	member.UpdatedAt = time.Now()
	r.members[member.ID] = member
	return nil
}

// Delete removes a staff member
func (r *mockStaffRepository) Delete(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.members[id]; !exists {
		return errors.New("staff member not found")
	}

	delete(r.members, id)
	return nil
}

// List retrieves staff members with pagination
func (r *mockStaffRepository) List(limit, offset int) ([]*staff.Member, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var members []*staff.Member
	count := 0

	for _, member := range r.members {
		if count >= offset {
			members = append(members, member)
			if len(members) >= limit {
				break
			}
		}
		count++
	}

	return members, nil
}

// seedData adds sample staff members for demonstration
func (r *mockStaffRepository) seedData() {
	sampleMembers := []*staff.Member{
		{
			ID:        uuid.New(),
			Name:      "Ahmed Bello",
			Email:     "ahmed.bello@example.com",
			Role:      staff.RoleSuperAdmin,
			Active:    true,
			CreatedAt: time.Now().Add(-48 * time.Hour),
			UpdatedAt: time.Now().Add(-48 * time.Hour),
		},
		{
			ID:        uuid.New(),
			Name:      "Musa Ibrahim",
			Email:     "musa.ibrahim@example.com",
			Role:      staff.RoleMaleFrontDesk,
			Active:    true,
			CreatedAt: time.Now().Add(-24 * time.Hour),
			UpdatedAt: time.Now().Add(-24 * time.Hour),
		},
		{
			ID:        uuid.New(),
			Name:      "Amina Yusuf",
			Email:     "amina.yusuf@example.com",
			Role:      staff.RoleFemaleFrontDesk,
			Active:    true,
			CreatedAt: time.Now().Add(-12 * time.Hour),
			UpdatedAt: time.Now().Add(-12 * time.Hour),
		},
	}

	for _, member := range sampleMembers {
		r.members[member.ID] = member
	}
}
