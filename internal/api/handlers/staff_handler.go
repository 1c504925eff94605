package handlers

import (
	"net/http"
	"strconv"

	"campus-intake/internal/domain/staff"
	"campus-intake/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffHandler handles staff directory HTTP requests
type StaffHandler struct {
	staffService staff.Service
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService staff.Service) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
	}
}

// CreateMember handles POST /api/v1/admin/staff
func (h *StaffHandler) CreateMember(c *gin.Context) {
	var req staff.CreateMemberRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	member, err := h.staffService.CreateMember(&req)
	if err != nil {
		if verrs := validator.FormatValidationError(err); len(verrs) > 0 {
			c.JSON(http.StatusBadRequest, APIResponse{
				Success: false,
				Message: "Validation failed",
				Errors:  verrs,
			})
			return
		}
		c.JSON(http.StatusConflict, APIResponse{
			Success: false,
			Message: "Failed to create staff member",
			Errors:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Staff member created successfully",
		Data:    map[string]interface{}{"member": member},
	})
}

// GetMember handles GET /api/v1/admin/staff/:id
func (h *StaffHandler) GetMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid staff member ID format",
		})
		return
	}

	member, err := h.staffService.GetMember(id)
	if err != nil {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Message: "Staff member not found",
			Errors:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"member": member},
	})
}

// UpdateMember handles PUT /api/v1/admin/staff/:id
func (h *StaffHandler) UpdateMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid staff member ID format",
		})
		return
	}

	var req staff.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	member, err := h.staffService.UpdateMember(id, &req)
	if err != nil {
		if verrs := validator.FormatValidationError(err); len(verrs) > 0 {
			c.JSON(http.StatusBadRequest, APIResponse{
				Success: false,
				Message: "Validation failed",
				Errors:  verrs,
			})
			return
		}
		c.JSON(http.StatusConflict, APIResponse{
			Success: false,
			Message: "Failed to update staff member",
			Errors:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Staff member updated successfully",
		Data:    map[string]interface{}{"member": member},
	})
}

// DeleteMember handles DELETE /api/v1/admin/staff/:id
func (h *StaffHandler) DeleteMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid staff member ID format",
		})
		return
	}

	if err := h.staffService.DeleteMember(id); err != nil {
		c.JSON(http.StatusNotFound, APIResponse{
			Success: false,
			Message: "Failed to delete staff member",
			Errors:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Staff member deleted successfully",
	})
}

// ListMembers handles GET /api/v1/admin/staff
func (h *StaffHandler) ListMembers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	members, err := h.staffService.ListMembers(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: "Failed to list staff members",
			Errors:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Staff members retrieved successfully",
		Data: map[string]interface{}{
			"members": members,
			"limit":   limit,
			"offset":  offset,
		},
	})
}
