package handlers

import (
	"net/http"
	"strconv"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScheduleHandler handles administrative HTTP requests: slot and level
// management, settings and the dashboard
type ScheduleHandler struct {
	scheduleService serviceInterfaces.ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService serviceInterfaces.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

// SlotRequest is the payload for slot create and update
type SlotRequest struct {
	Date      string        `json:"date" validate:"required,dateymd"`
	StartTime string        `json:"start_time" validate:"required,timehhmm"`
	EndTime   string        `json:"end_time" validate:"required,timehhmm"`
	LevelID   uuid.UUID     `json:"level_id" validate:"required"`
	Gender    domain.Gender `json:"gender" validate:"required,oneof=Male Female"`
	Capacity  int           `json:"capacity" validate:"gte=0"`
}

func (r *SlotRequest) toSlot() (*domain.AppointmentSlot, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return nil, err
	}
	return &domain.AppointmentSlot{
		Date:      date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		LevelID:   r.LevelID,
		Gender:    r.Gender,
		Capacity:  r.Capacity,
	}, nil
}

// CreateSlot handles POST /api/v1/admin/slots
func (h *ScheduleHandler) CreateSlot(c *gin.Context) {
	slot, ok := h.bindSlot(c)
	if !ok {
		return
	}

	created, err := h.scheduleService.CreateSlot(c.Request.Context(), slot)
	if err != nil {
		respondError(c, err, "Failed to create slot")
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Slot created successfully",
		Data:    map[string]interface{}{"slot": created},
	})
}

// UpdateSlot handles PUT /api/v1/admin/slots/:slot_id
func (h *ScheduleHandler) UpdateSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid slot ID format",
		})
		return
	}

	slot, ok := h.bindSlot(c)
	if !ok {
		return
	}
	slot.SlotID = slotID

	updated, err := h.scheduleService.UpdateSlot(c.Request.Context(), slot)
	if err != nil {
		respondError(c, err, "Failed to update slot")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Slot updated successfully",
		Data:    map[string]interface{}{"slot": updated},
	})
}

// DeleteSlot handles DELETE /api/v1/admin/slots/:slot_id
func (h *ScheduleHandler) DeleteSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid slot ID format",
		})
		return
	}

	if err := h.scheduleService.DeleteSlot(c.Request.Context(), slotID); err != nil {
		respondError(c, err, "Failed to delete slot")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Slot deleted successfully",
	})
}

// GetSlot handles GET /api/v1/admin/slots/:slot_id
func (h *ScheduleHandler) GetSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid slot ID format",
		})
		return
	}

	slot, err := h.scheduleService.GetSlot(c.Request.Context(), slotID)
	if err != nil {
		respondError(c, err, "Failed to retrieve slot")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"slot": slot},
	})
}

// ListSlots handles GET /api/v1/admin/slots
func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	slots, total, err := h.scheduleService.ListSlots(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list slots")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Slots retrieved successfully",
		Data: map[string]interface{}{
			"slots":  slots,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// LevelRequest is the payload for level create and update
type LevelRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// CreateLevel handles POST /api/v1/admin/levels
func (h *ScheduleHandler) CreateLevel(c *gin.Context) {
	req, ok := h.bindLevel(c)
	if !ok {
		return
	}

	level := &domain.Level{
		Name:      req.Name,
		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if req.IsActive != nil {
		level.IsActive = *req.IsActive
	}

	created, err := h.scheduleService.CreateLevel(c.Request.Context(), level)
	if err != nil {
		respondError(c, err, "Failed to create level")
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Level created successfully",
		Data:    map[string]interface{}{"level": created},
	})
}

// UpdateLevel handles PUT /api/v1/admin/levels/:level_id
func (h *ScheduleHandler) UpdateLevel(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("level_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid level ID format",
		})
		return
	}

	req, ok := h.bindLevel(c)
	if !ok {
		return
	}

	level := &domain.Level{
		LevelID:   levelID,
		Name:      req.Name,
		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if req.IsActive != nil {
		level.IsActive = *req.IsActive
	}

	updated, err := h.scheduleService.UpdateLevel(c.Request.Context(), level)
	if err != nil {
		respondError(c, err, "Failed to update level")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Level updated successfully",
		Data:    map[string]interface{}{"level": updated},
	})
}

// DeleteLevel handles DELETE /api/v1/admin/levels/:level_id
func (h *ScheduleHandler) DeleteLevel(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("level_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid level ID format",
		})
		return
	}

	if err := h.scheduleService.DeleteLevel(c.Request.Context(), levelID); err != nil {
		respondError(c, err, "Failed to delete level")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Level deleted successfully",
	})
}

// ListLevels handles GET /api/v1/admin/levels
func (h *ScheduleHandler) ListLevels(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	levels, err := h.scheduleService.ListLevels(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err, "Failed to list levels")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Levels retrieved successfully",
		Data:    map[string]interface{}{"levels": levels},
	})
}

// GetSettings handles GET /api/v1/admin/settings
func (h *ScheduleHandler) GetSettings(c *gin.Context) {
	settings, err := h.scheduleService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve settings")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"settings": settings},
	})
}

// UpdateSettings handles PUT /api/v1/admin/settings
func (h *ScheduleHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		RegistrationOpen bool `json:"registration_open"`
		MaxDailyCapacity int  `json:"max_daily_capacity" validate:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  validator.FormatValidationError(err),
		})
		return
	}

	settings, err := h.scheduleService.UpdateSettings(c.Request.Context(), &domain.AppSettings{
		RegistrationOpen: req.RegistrationOpen,
		MaxDailyCapacity: req.MaxDailyCapacity,
	})
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Settings updated successfully",
		Data:    map[string]interface{}{"settings": settings},
	})
}

// GetDashboard handles GET /api/v1/admin/dashboard
func (h *ScheduleHandler) GetDashboard(c *gin.Context) {
	stats, err := h.scheduleService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve dashboard")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"stats": stats},
	})
}

func (h *ScheduleHandler) bindSlot(c *gin.Context) (*domain.AppointmentSlot, bool) {
	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return nil, false
	}

	if err := validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  validator.FormatValidationError(err),
		})
		return nil, false
	}

	slot, err := req.toSlot()
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "date must be in YYYY-MM-DD format",
		})
		return nil, false
	}
	return slot, true
}

func (h *ScheduleHandler) bindLevel(c *gin.Context) (*LevelRequest, bool) {
	var req LevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return nil, false
	}

	if err := validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  validator.FormatValidationError(err),
		})
		return nil, false
	}
	return &req, true
}
