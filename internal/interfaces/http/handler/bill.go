package handler

import (
	"time"

	billingapp "github.com/hms/backend/internal/application/billing"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillHandler handles bill ledger API endpoints
type BillHandler struct {
	BaseHandler
	billService           *billingapp.BillService
	reconciliationService *billingapp.ReconciliationService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(
	billService *billingapp.BillService,
	reconciliationService *billingapp.ReconciliationService,
) *BillHandler {
	return &BillHandler{
		billService:           billService,
		reconciliationService: reconciliationService,
	}
}

// BillItemRequest is one line of a bill creation request
// @Description A single bill line; total_price is computed server-side
type BillItemRequest struct {
	Description string  `json:"description" binding:"required,min=1,max=200" example:"Consultation"`
	Quantity    int     `json:"quantity" binding:"required,gt=0" example:"1"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0" example:"500.00"`
}

// CreateBillRequest represents a request to create a bill
// @Description Request body for creating a bill with its items
type CreateBillRequest struct {
	BillNumber  string            `json:"bill_number" binding:"max=50" example:"BILL-0001"`
	PatientID   string            `json:"patient_id" binding:"required,uuid"`
	AdmissionID *string           `json:"admission_id" binding:"omitempty,uuid"`
	Items       []BillItemRequest `json:"items" binding:"required,min=1,dive"`
	DueDate     *time.Time        `json:"due_date" example:"2026-03-20T00:00:00Z"`
}

// Create godoc
// @ID           createBill
// @Summary      Create a bill
// @Description  Creates a pending bill; item totals and the bill total are computed from quantity and unit price
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request body CreateBillRequest true "Bill creation request"
// @Success      201 {object} APIResponse[billing.Bill]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	appReq := billingapp.CreateBillRequest{
		BillNumber: req.BillNumber,
		PatientID:  patientID,
		DueDate:    req.DueDate,
	}
	if req.AdmissionID != nil {
		admissionID, err := uuid.Parse(*req.AdmissionID)
		if err != nil {
			h.BadRequest(c, "Invalid admission ID")
			return
		}
		appReq.AdmissionID = &admissionID
	}
	for _, item := range req.Items {
		appReq.Items = append(appReq.Items, billingapp.BillItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   toDecimal(item.UnitPrice),
		})
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bill)
}

// List godoc
// @ID           listBills
// @Summary      List bills
// @Tags         bills
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        patient_id query string false "Filter by patient ID" format(uuid)
// @Param        admission_id query string false "Filter by admission ID" format(uuid)
// @Param        status query string false "Filter by status" Enums(PENDING, PAID, CANCELLED)
// @Success      200 {object} APIResponse[[]billing.Bill]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	filter, ok := h.bindBillFilter(c)
	if !ok {
		return
	}

	bills, total, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, bills, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getBillById
// @Summary      Get consolidated bill detail
// @Description  For admission-linked bills the lines and payments span all bills of the admission, with bed-charge lines excluded from the itemization
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.BillDetail]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	detail, err := h.reconciliationService.BillDetail(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, detail)
}

// Cancel godoc
// @ID           cancelBill
// @Summary      Cancel a bill
// @Description  Voids a pending bill; paid bills cannot be cancelled
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} APIResponse[billing.Bill]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id}/cancel [post]
func (h *BillHandler) Cancel(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.CancelBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// bindBillFilter parses list query parameters into a domain filter
func (h *BillHandler) bindBillFilter(c *gin.Context) (billing.BillFilter, bool) {
	listReq, ok := h.bindListRequest(c)
	if !ok {
		return billing.BillFilter{}, false
	}

	filter := billing.BillFilter{Filter: listReq}

	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid patient ID")
			return filter, false
		}
		filter.PatientID = &patientID
	}
	if raw := c.Query("admission_id"); raw != "" {
		admissionID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid admission ID")
			return filter, false
		}
		filter.AdmissionID = &admissionID
	}
	if raw := c.Query("status"); raw != "" {
		status := billing.BillStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid bill status")
			return filter, false
		}
		filter.Status = &status
	}

	return filter, true
}
