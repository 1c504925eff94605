package handlers

import (
	"errors"
	"net/http"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/internal/service"
	"campus-intake/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// EnrollmentHandler handles the public booking flow: level directory,
// availability reads, direct reservations and the wizard endpoints
type EnrollmentHandler struct {
	enrollmentService   serviceInterfaces.EnrollmentService
	availabilityService serviceInterfaces.AvailabilityService
	wizardService       serviceInterfaces.WizardService
	scheduleService     serviceInterfaces.ScheduleService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(
	enrollmentService serviceInterfaces.EnrollmentService,
	availabilityService serviceInterfaces.AvailabilityService,
	wizardService serviceInterfaces.WizardService,
	scheduleService serviceInterfaces.ScheduleService,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService:   enrollmentService,
		availabilityService: availabilityService,
		wizardService:       wizardService,
		scheduleService:     scheduleService,
	}
}

// GetLevels handles GET /api/v1/levels
func (h *EnrollmentHandler) GetLevels(c *gin.Context) {
	levels, err := h.scheduleService.ListLevels(c.Request.Context(), false)
	if err != nil {
		respondError(c, err, "Failed to retrieve levels")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Levels retrieved successfully",
		Data:    map[string]interface{}{"levels": levels},
	})
}

// GetAvailableDates handles GET /api/v1/availability/dates
func (h *EnrollmentHandler) GetAvailableDates(c *gin.Context) {
	levelID, gender, ok := bindLevelGender(c)
	if !ok {
		return
	}

	dates, err := h.availabilityService.ListAvailableDates(c.Request.Context(), levelID, gender)
	if err != nil {
		respondError(c, err, "Failed to retrieve available dates")
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Available dates retrieved successfully",
		Data:    map[string]interface{}{"dates": formatted},
	})
}

// GetAvailableSlots handles GET /api/v1/availability/slots
func (h *EnrollmentHandler) GetAvailableSlots(c *gin.Context) {
	levelID, gender, ok := bindLevelGender(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "date must be in YYYY-MM-DD format",
		})
		return
	}

	slots, err := h.availabilityService.ListSlots(c.Request.Context(), date, levelID, gender)
	if err != nil {
		respondError(c, err, "Failed to retrieve slots")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Slots retrieved successfully",
		Data:    map[string]interface{}{"slots": slots},
	})
}

// Reserve handles POST /api/v1/reserve
func (h *EnrollmentHandler) Reserve(c *gin.Context) {
	var req serviceInterfaces.ReserveRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	req.IdempotencyKey = c.GetString("idempotency_key")

	student, err := h.enrollmentService.Reserve(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Reservation failed")
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Appointment reserved successfully",
		Data:    map[string]interface{}{"registration": student},
	})
}

// StartWizard handles POST /api/v1/wizard
func (h *EnrollmentHandler) StartWizard(c *gin.Context) {
	token, wizard, err := h.wizardService.Start(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to start session")
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Session started",
		Data:    map[string]interface{}{"token": token, "wizard": wizard},
	})
}

// GetWizard handles GET /api/v1/wizard/:token
func (h *EnrollmentHandler) GetWizard(c *gin.Context) {
	wizard, err := h.wizardService.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "Failed to retrieve session")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"wizard": wizard},
	})
}

// SubmitWizardProfile handles POST /api/v1/wizard/:token/profile
func (h *EnrollmentHandler) SubmitWizardProfile(c *gin.Context) {
	var form domain.ProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	wizard, err := h.wizardService.SubmitProfile(c.Request.Context(), c.Param("token"), form)
	if err != nil {
		respondError(c, err, "Failed to submit profile")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Profile accepted",
		Data:    map[string]interface{}{"wizard": wizard},
	})
}

// SelectWizardSlot handles POST /api/v1/wizard/:token/slot
func (h *EnrollmentHandler) SelectWizardSlot(c *gin.Context) {
	var req struct {
		SlotID uuid.UUID `json:"slot_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Errors:  err.Error(),
		})
		return
	}

	wizard, err := h.wizardService.SelectSlot(c.Request.Context(), c.Param("token"), req.SlotID)
	if err != nil {
		respondWizardError(c, wizard, err, "Failed to select slot")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Slot selected",
		Data:    map[string]interface{}{"wizard": wizard},
	})
}

// WizardBack handles POST /api/v1/wizard/:token/back
func (h *EnrollmentHandler) WizardBack(c *gin.Context) {
	wizard, err := h.wizardService.Back(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "Failed to step back")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"wizard": wizard},
	})
}

// ConfirmWizard handles POST /api/v1/wizard/:token/confirm
func (h *EnrollmentHandler) ConfirmWizard(c *gin.Context) {
	wizard, err := h.wizardService.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondWizardError(c, wizard, err, "Reservation failed")
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: "Appointment reserved successfully",
		Data:    map[string]interface{}{"wizard": wizard},
	})
}

// AbandonWizard handles DELETE /api/v1/wizard/:token
func (h *EnrollmentHandler) AbandonWizard(c *gin.Context) {
	if err := h.wizardService.Abandon(c.Request.Context(), c.Param("token")); err != nil {
		respondError(c, err, "Failed to abandon session")
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Session abandoned",
	})
}

func bindLevelGender(c *gin.Context) (uuid.UUID, domain.Gender, bool) {
	levelIDStr := c.Query("level_id")
	if levelIDStr == "" {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "level_id is required",
		})
		return uuid.Nil, "", false
	}

	levelID, err := uuid.Parse(levelIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid level_id format",
		})
		return uuid.Nil, "", false
	}

	gender := domain.Gender(c.Query("gender"))
	if gender != domain.GenderMale && gender != domain.GenderFemale {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "gender must be Male or Female",
		})
		return uuid.Nil, "", false
	}

	return levelID, gender, true
}

// respondWizardError returns the updated wizard next to the typed error
// when the confirm step lost the race, so clients can re-render the
// slot picker without another round trip
func respondWizardError(c *gin.Context, wizard *domain.Wizard, err error, message string) {
	if wizard != nil && (errors.Is(err, domain.ErrSlotFull) || errors.Is(err, domain.ErrSlotNotFound)) {
		c.JSON(statusForError(err), APIResponse{
			Success: false,
			Message: message,
			Errors:  err.Error(),
			Data:    map[string]interface{}{"wizard": wizard},
		})
		return
	}
	respondError(c, err, message)
}

// respondError maps domain errors to HTTP statuses
func respondError(c *gin.Context, err error, message string) {
	if verrs := validator.FormatValidationError(err); len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  verrs,
		})
		return
	}

	c.JSON(statusForError(err), APIResponse{
		Success: false,
		Message: message,
		Errors:  err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSlotNotFound),
		errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, domain.ErrLevelNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSlotFull),
		errors.Is(err, domain.ErrAlreadyCheckedIn),
		errors.Is(err, domain.ErrCapacityBelowBooked),
		errors.Is(err, domain.ErrSlotHasBookings),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrIdempotencyMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSlotMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRegistrationClosed):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
