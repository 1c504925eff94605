package service

import (
	"testing"

	"campus-intake/internal/domain/staff"
	"campus-intake/internal/infrastructure/repository"
)

func TestStaffService_CreateMember(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	req := &staff.CreateMemberRequest{
		Name:  "Fatima Sule",
		Email: "fatima.sule@example.com",
		Role:  staff.RoleFemaleSectionAdm,
	}

	member, err := staffService.CreateMember(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if member == nil {
		t.Fatal("Expected member to be created, got nil")
	}

	if member.Name != req.Name {
		t.Errorf("Expected name %s, got %s", req.Name, member.Name)
	}
	if member.Email != req.Email {
		t.Errorf("Expected email %s, got %s", req.Email, member.Email)
	}
	if member.Role != req.Role {
		t.Errorf("Expected role %s, got %s", req.Role, member.Role)
	}
	if !member.Active {
		t.Error("Expected member to be active")
	}
}

func TestStaffService_CreateMember_DuplicateEmail(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	req := &staff.CreateMemberRequest{
		Name:  "Another Ahmed",
		Email: "ahmed.bello@example.com", // already in the seeded directory
		Role:  staff.RoleMaleFrontDesk,
	}

	member, err := staffService.CreateMember(req)
	if err == nil {
		t.Fatal("Expected error for duplicate email, got nil")
	}
	if member != nil {
		t.Fatal("Expected nil member for duplicate email, got member")
	}

	expectedError := "staff member with this email already exists"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}
}

func TestStaffService_CreateMember_InvalidRole(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	req := &staff.CreateMemberRequest{
		Name:  "Nobody Inparticular",
		Email: "nobody@example.com",
		Role:  staff.Role("janitor"),
	}

	if _, err := staffService.CreateMember(req); err == nil {
		t.Fatal("Expected a validation error for an unknown role, got nil")
	}
}

func TestStaffService_GetMember(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	seeded, err := staffRepo.GetByEmail("musa.ibrahim@example.com")
	if err != nil {
		t.Fatalf("Failed to get seeded member by email: %v", err)
	}

	found, err := staffService.GetMember(seeded.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if found == nil {
		t.Fatal("Expected member to be found, got nil")
	}
	if found.ID != seeded.ID {
		t.Errorf("Expected member ID %s, got %s", seeded.ID, found.ID)
	}
	if !found.IsFrontDesk() {
		t.Error("Expected the seeded front desk member to report as front desk")
	}
}

func TestStaffService_UpdateMember(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	seeded, err := staffRepo.GetByEmail("amina.yusuf@example.com")
	if err != nil {
		t.Fatalf("Failed to get seeded member by email: %v", err)
	}

	newRole := staff.RoleFemaleSectionAdm
	inactive := false
	updated, err := staffService.UpdateMember(seeded.ID, &staff.UpdateMemberRequest{
		Role:   &newRole,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.Role != newRole {
		t.Errorf("Expected role %s, got %s", newRole, updated.Role)
	}
	if updated.Active {
		t.Error("Expected member to be inactive")
	}
	if updated.Name != seeded.Name {
		t.Errorf("Expected untouched name %s, got %s", seeded.Name, updated.Name)
	}
}

func TestStaffService_UpdateMember_EmailTaken(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	seeded, err := staffRepo.GetByEmail("amina.yusuf@example.com")
	if err != nil {
		t.Fatalf("Failed to get seeded member by email: %v", err)
	}

	taken := "ahmed.bello@example.com"
	if _, err := staffService.UpdateMember(seeded.ID, &staff.UpdateMemberRequest{Email: &taken}); err == nil {
		t.Fatal("Expected an error for a taken email, got nil")
	}
}

func TestStaffService_ListMembers(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	members, err := staffService.ListMembers(10, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(members) != 3 {
		t.Errorf("Expected 3 seeded members, got %d", len(members))
	}
}

func TestStaffService_DeleteMember(t *testing.T) {
	staffRepo := repository.NewMockStaffRepository()
	staffService := NewStaffService(staffRepo)

	seeded, err := staffRepo.GetByEmail("musa.ibrahim@example.com")
	if err != nil {
		t.Fatalf("Failed to get seeded member by email: %v", err)
	}

	if err := staffService.DeleteMember(seeded.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := staffService.DeleteMember(seeded.ID); err == nil {
		t.Fatal("Expected an error deleting a missing member, got nil")
	}
}
