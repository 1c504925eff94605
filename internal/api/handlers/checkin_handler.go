package handlers

import (
	"errors"
	"net/http"
	"strconv"

	domain "campus-intake/internal/domain/enrollment"
	serviceInterfaces "campus-intake/internal/interfaces/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckInHandler handles front-desk HTTP requests
type CheckInHandler struct {
	checkinService serviceInterfaces.CheckInService
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkinService serviceInterfaces.CheckInService) *CheckInHandler {
	return &CheckInHandler{
		checkinService: checkinService,
	}
}

// SearchStudent handles GET /api/v1/admin/students/search
func (h *CheckInHandler) SearchStudent(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "q is required",
		})
		return
	}

	student, err := h.checkinService.FindStudent(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to find student")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Student found",
		Data:    map[string]interface{}{"student": student},
	})
}

// CheckIn handles POST /api/v1/admin/students/:student_id/checkin
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid student ID format",
		})
		return
	}

	student, err := h.checkinService.CheckIn(c.Request.Context(), studentID)
	if err != nil {
		// A repeat scan still carries the record so the desk can see
		// who won the first one.
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			c.JSON(http.StatusConflict, APIResponse{
				Success: false,
				Message: "Student already checked in",
				Data:    map[string]interface{}{"student": student},
			})
			return
		}
		respondError(c, err, "Failed to check in student")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Student checked in successfully",
		Data:    map[string]interface{}{"student": student},
	})
}

// ListStudents handles GET /api/v1/admin/students
func (h *CheckInHandler) ListStudents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := c.Query("search")

	students, total, err := h.checkinService.ListStudents(c.Request.Context(), limit, offset, search)
	if err != nil {
		respondError(c, err, "Failed to list students")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Students retrieved successfully",
		Data: map[string]interface{}{
			"students": students,
			"total":    total,
			"limit":    limit,
			"offset":   offset,
		},
	})
}
