package handler

import (
	admissionapp "github.com/hms/backend/internal/application/admission"
	admissiondomain "github.com/hms/backend/internal/domain/admission"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BedHandler handles bed roster API endpoints
type BedHandler struct {
	BaseHandler
	admissionService *admissionapp.AdmissionService
}

// NewBedHandler creates a new BedHandler
func NewBedHandler(admissionService *admissionapp.AdmissionService) *BedHandler {
	return &BedHandler{admissionService: admissionService}
}

// CreateBedRequest represents a request to add a bed to the roster
// @Description Request body for creating a bed
type CreateBedRequest struct {
	BedNumber   string  `json:"bed_number" binding:"required,min=1,max=50" example:"GEN-101"`
	Ward        string  `json:"ward" binding:"required,min=1,max=100" example:"General"`
	BedType     string  `json:"bed_type" binding:"required,oneof=GENERAL PRIVATE ICU" example:"GENERAL"`
	PricePerDay float64 `json:"price_per_day" binding:"required,gt=0" example:"800.00"`
}

// Create godoc
// @ID           createBed
// @Summary      Add a bed to the roster
// @Tags         beds
// @Accept       json
// @Produce      json
// @Param        request body CreateBedRequest true "Bed creation request"
// @Success      201 {object} APIResponse[admissiondomain.Bed]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /beds [post]
func (h *BedHandler) Create(c *gin.Context) {
	var req CreateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bed, err := h.admissionService.CreateBed(
		c.Request.Context(),
		req.BedNumber,
		req.Ward,
		admissiondomain.BedType(req.BedType),
		toDecimal(req.PricePerDay),
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bed)
}

// List godoc
// @ID           listBeds
// @Summary      List beds
// @Description  Returns the bed roster; available=true restricts to unoccupied beds for the intake dialog
// @Tags         beds
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        ward query string false "Filter by ward"
// @Param        bed_type query string false "Filter by bed type" Enums(GENERAL, PRIVATE, ICU)
// @Param        available query bool false "Only unoccupied beds"
// @Success      200 {object} APIResponse[[]admissiondomain.Bed]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /beds [get]
func (h *BedHandler) List(c *gin.Context) {
	listReq, ok := h.bindListRequest(c)
	if !ok {
		return
	}

	filter := admissiondomain.BedFilter{
		Filter:        listReq,
		AvailableOnly: c.Query("available") == "true",
	}
	if ward := c.Query("ward"); ward != "" {
		filter.Ward = &ward
	}
	if raw := c.Query("bed_type"); raw != "" {
		bedType := admissiondomain.BedType(raw)
		if !bedType.IsValid() {
			h.BadRequest(c, "Invalid bed type")
			return
		}
		filter.BedType = &bedType
	}

	beds, total, err := h.admissionService.ListBeds(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, beds, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getBedById
// @Summary      Get a bed by ID
// @Tags         beds
// @Produce      json
// @Param        id path string true "Bed ID" format(uuid)
// @Success      200 {object} APIResponse[admissiondomain.Bed]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /beds/{id} [get]
func (h *BedHandler) GetByID(c *gin.Context) {
	bedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bed ID")
		return
	}

	bed, err := h.admissionService.GetBed(c.Request.Context(), bedID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bed)
}
