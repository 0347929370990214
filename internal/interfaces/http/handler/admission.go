package handler

import (
	"time"

	admissionapp "github.com/hms/backend/internal/application/admission"
	billingapp "github.com/hms/backend/internal/application/billing"
	admissiondomain "github.com/hms/backend/internal/domain/admission"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader carries the client-supplied idempotency key for
// payment-creating operations.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// AdmissionHandler handles admission-related API endpoints
type AdmissionHandler struct {
	BaseHandler
	admissionService      *admissionapp.AdmissionService
	dischargeService      *admissionapp.DischargeService
	reconciliationService *billingapp.ReconciliationService
}

// NewAdmissionHandler creates a new AdmissionHandler
func NewAdmissionHandler(
	admissionService *admissionapp.AdmissionService,
	dischargeService *admissionapp.DischargeService,
	reconciliationService *billingapp.ReconciliationService,
) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService:      admissionService,
		dischargeService:      dischargeService,
		reconciliationService: reconciliationService,
	}
}

// AdmitPatientRequest represents a patient intake request
// @Description Request body for admitting a patient
type AdmitPatientRequest struct {
	PatientID      string     `json:"patient_id" binding:"required,uuid" example:"7b8a1c1e-3f2a-4d5b-9c6d-1e2f3a4b5c6d"`
	BedID          *string    `json:"bed_id" binding:"omitempty,uuid" example:"9c6d1e2f-3a4b-5c6d-7b8a-1c1e3f2a4d5b"`
	AdmissionDate  *time.Time `json:"admission_date" example:"2026-03-10T09:00:00Z"`
	Reason         string     `json:"reason" binding:"max=500" example:"Observation"`
	TotalAmount    float64    `json:"total_amount" binding:"gte=0" example:"500.00"`
	HospitalCharge *float64   `json:"hospital_charge" binding:"omitempty,gt=0" example:"50.00"`
}

// TransitionRequest represents an optional effective instant for a status transition
// @Description Request body for discharge/transfer, all fields optional
type TransitionRequest struct {
	At *time.Time `json:"at" example:"2026-03-12T11:00:00Z"`
}

// SettleAndDischargeRequest represents the settle-then-discharge operation
// @Description Request body for paying the outstanding balance and retrying discharge
type SettleAndDischargeRequest struct {
	BillID        string         `json:"bill_id" binding:"required,uuid" example:"1e2f3a4b-5c6d-7b8a-9c6d-1c1e3f2a4d5b"`
	Amount        FlexibleAmount `json:"amount" swaggertype:"number" example:"550.00"`
	PaymentMethod string         `json:"payment_method" binding:"required,oneof=CASH BANK_TRANSFER" example:"CASH"`
	TransactionID string         `json:"transaction_id" binding:"max=100" example:"TXN-20260312-001"`
	ReceivedBy    string         `json:"received_by" binding:"max=100" example:"cashier1"`
	ReceiptNo     string         `json:"receipt_no" binding:"max=50" example:"RCPT-0042"`
	Notes         string         `json:"notes" binding:"max=500"`
}

// Admit godoc
// @ID           admitPatient
// @Summary      Admit a patient
// @Description  Create an admission, occupy the requested bed and open the automatic hospital-charge bill
// @Tags         admissions
// @Accept       json
// @Produce      json
// @Param        request body AdmitPatientRequest true "Patient intake request"
// @Success      201 {object} APIResponse[admissionapp.AdmitResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions [post]
func (h *AdmissionHandler) Admit(c *gin.Context) {
	var req AdmitPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	appReq := admissionapp.AdmitRequest{
		PatientID:   patientID,
		Reason:      req.Reason,
		TotalAmount: toDecimal(req.TotalAmount),
	}
	if req.BedID != nil {
		bedID, err := uuid.Parse(*req.BedID)
		if err != nil {
			h.BadRequest(c, "Invalid bed ID")
			return
		}
		appReq.BedID = &bedID
	}
	if req.AdmissionDate != nil {
		appReq.AdmissionDate = *req.AdmissionDate
	}
	if req.HospitalCharge != nil {
		appReq.HospitalCharge = toDecimal(*req.HospitalCharge)
	}

	result, err := h.admissionService.Admit(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// List godoc
// @ID           listAdmissions
// @Summary      List admissions with reconciled financials
// @Description  Returns admission rows; each row carries total, paid and remaining computed by the reconciliation view
// @Tags         admissions
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        patient_id query string false "Filter by patient ID" format(uuid)
// @Param        status query string false "Filter by status" Enums(ADMITTED, DISCHARGED, TRANSFERRED)
// @Success      200 {object} APIResponse[[]billingapp.AdmissionRow]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	filter, ok := h.bindAdmissionFilter(c)
	if !ok {
		return
	}

	rows, total, err := h.reconciliationService.AdmissionRows(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getAdmissionById
// @Summary      Get an admission statement
// @Description  Returns the admission with its bed, charge breakdown, per-bill paid amounts and payment history
// @Tags         admissions
// @Produce      json
// @Param        id path string true "Admission ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.AdmissionStatement]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions/{id} [get]
func (h *AdmissionHandler) GetByID(c *gin.Context) {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admission ID")
		return
	}

	statement, err := h.reconciliationService.Statement(c.Request.Context(), admissionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// Discharge godoc
// @ID           dischargeAdmission
// @Summary      Discharge a patient
// @Description  Discharges when the remaining balance is settled; otherwise responds 422 with the exact remaining amount
// @Tags         admissions
// @Accept       json
// @Produce      json
// @Param        id path string true "Admission ID" format(uuid)
// @Param        request body TransitionRequest false "Optional discharge instant"
// @Success      200 {object} APIResponse[admissionapp.DischargeResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions/{id}/discharge [post]
func (h *AdmissionHandler) Discharge(c *gin.Context) {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admission ID")
		return
	}

	at, ok := h.bindTransitionInstant(c)
	if !ok {
		return
	}

	result, err := h.dischargeService.Discharge(c.Request.Context(), admissionID, at)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Transfer godoc
// @ID           transferAdmission
// @Summary      Transfer a patient
// @Description  Moves the admission to TRANSFERRED and releases the bed; no financial gating applies
// @Tags         admissions
// @Accept       json
// @Produce      json
// @Param        id path string true "Admission ID" format(uuid)
// @Param        request body TransitionRequest false "Optional transfer instant"
// @Success      200 {object} APIResponse[admissiondomain.Admission]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions/{id}/transfer [post]
func (h *AdmissionHandler) Transfer(c *gin.Context) {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admission ID")
		return
	}

	at, ok := h.bindTransitionInstant(c)
	if !ok {
		return
	}

	adm, err := h.admissionService.Transfer(c.Request.Context(), admissionID, at)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adm)
}

// OutstandingBills godoc
// @ID           getOutstandingBills
// @Summary      List unsettled bills of an admission
// @Description  Returns bills with a positive remaining balance, largest first, plus the admission-level total for dialog pre-fill
// @Tags         admissions
// @Produce      json
// @Param        id path string true "Admission ID" format(uuid)
// @Success      200 {object} APIResponse[admissionapp.OutstandingResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions/{id}/outstanding-bills [get]
func (h *AdmissionHandler) OutstandingBills(c *gin.Context) {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admission ID")
		return
	}

	result, err := h.dischargeService.OutstandingBills(c.Request.Context(), admissionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// SettleAndDischarge godoc
// @ID           settleAndDischarge
// @Summary      Pay the outstanding balance and retry discharge
// @Description  Records the payment, then retries the discharge once. The payment stays committed even when the balance is still positive; the response then carries discharged=false and the updated remaining amount.
// @Tags         admissions
// @Accept       json
// @Produce      json
// @Param        id path string true "Admission ID" format(uuid)
// @Param        X-Idempotency-Key header string false "Idempotency key protecting against double submission"
// @Param        request body SettleAndDischargeRequest true "Settlement payment"
// @Success      200 {object} APIResponse[admissionapp.SettleAndDischargeResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admissions/{id}/settle-discharge [post]
func (h *AdmissionHandler) SettleAndDischarge(c *gin.Context) {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admission ID")
		return
	}

	var req SettleAndDischargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	billID, err := uuid.Parse(req.BillID)
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	result, err := h.dischargeService.SettleAndDischarge(c.Request.Context(), admissionapp.SettleAndDischargeRequest{
		AdmissionID:    admissionID,
		BillID:         billID,
		Amount:         req.Amount.Decimal,
		PaymentMethod:  billing.PaymentMethod(req.PaymentMethod),
		TransactionID:  req.TransactionID,
		ReceivedBy:     req.ReceivedBy,
		ReceiptNo:      req.ReceiptNo,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// bindAdmissionFilter parses list query parameters into a domain filter
func (h *AdmissionHandler) bindAdmissionFilter(c *gin.Context) (admissiondomain.AdmissionFilter, bool) {
	listReq, ok := h.bindListRequest(c)
	if !ok {
		return admissiondomain.AdmissionFilter{}, false
	}

	filter := admissiondomain.AdmissionFilter{Filter: listReq}

	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid patient ID")
			return filter, false
		}
		filter.PatientID = &patientID
	}
	if raw := c.Query("status"); raw != "" {
		status := admissiondomain.AdmissionStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid admission status")
			return filter, false
		}
		filter.Status = &status
	}

	return filter, true
}

// bindTransitionInstant reads the optional body of discharge/transfer.
// An empty body is valid and means "now".
func (h *AdmissionHandler) bindTransitionInstant(c *gin.Context) (*time.Time, bool) {
	if c.Request.ContentLength == 0 {
		return nil, true
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return nil, false
	}
	return req.At, true
}
