package service

import (
	"errors"
	"fmt"

	"campus-intake/internal/domain/staff"
	"campus-intake/pkg/logger"
	"campus-intake/pkg/validator"

	"github.com/google/uuid"
)

// staffService implements the staff.Service interface
type staffService struct {
	staffRepo staff.Repository
}

// NewStaffService creates a new staff directory service
func NewStaffService(staffRepo staff.Repository) staff.Service {
	return &staffService{
		staffRepo: staffRepo,
	}
}

// CreateMember adds a staff member to the directory
func (s *staffService) CreateMember(req *staff.CreateMemberRequest) (*staff.Member, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.staffRepo.GetByEmail(req.Email)
	if err == nil && existing != nil {
		return nil, errors.New("staff member with this email already exists")
	}

	member := staff.NewMember(req.Name, req.Email, req.Role)
	if err := s.staffRepo.Create(member); err != nil {
		logger.Error("Failed to create staff member: %v", err)
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}

	logger.Info("Staff member created with ID: %s", member.ID)
	return member, nil
}

// GetMember retrieves a staff member by ID
func (s *staffService) GetMember(id uuid.UUID) (*staff.Member, error) {
	member, err := s.staffRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if member == nil {
		return nil, errors.New("staff member not found")
	}
	return member, nil
}

// UpdateMember edits a staff member
func (s *staffService) UpdateMember(id uuid.UUID, req *staff.UpdateMemberRequest) (*staff.Member, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	member, err := s.staffRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if member == nil {
		return nil, errors.New("staff member not found")
	}

	if req.Email != nil {
		existing, err := s.staffRepo.GetByEmail(*req.Email)
		if err == nil && existing != nil && existing.ID != id {
			return nil, errors.New("email already taken")
		}
		member.Email = *req.Email
	}
	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Active != nil {
		member.Active = *req.Active
	}

	if err := s.staffRepo.Update(member); err != nil {
		logger.Error("Failed to update staff member: %v", err)
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}

	logger.Info("Staff member updated with ID: %s", member.ID)
	return member, nil
}

// DeleteMember removes a staff member
func (s *staffService) DeleteMember(id uuid.UUID) error {
	member, err := s.staffRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("failed to get staff member: %w", err)
	}
	if member == nil {
		return errors.New("staff member not found")
	}

	if err := s.staffRepo.Delete(id); err != nil {
		logger.Error("Failed to delete staff member: %v", err)
		return fmt.Errorf("failed to delete staff member: %w", err)
	}

	logger.Info("Staff member deleted with ID: %s", id)
	return nil
}

// ListMembers retrieves staff members with pagination
func (s *staffService) ListMembers(limit, offset int) ([]*staff.Member, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	members, err := s.staffRepo.List(limit, offset)
	if err != nil {
		logger.Error("Failed to list staff members: %v", err)
		return nil, fmt.Errorf("failed to list staff members: %w", err)
	}
	return members, nil
}
