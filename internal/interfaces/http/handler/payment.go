package handler

import (
	"time"

	billingapp "github.com/hms/backend/internal/application/billing"
	"github.com/hms/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService        *billingapp.PaymentService
	reconciliationService *billingapp.ReconciliationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	paymentService *billingapp.PaymentService,
	reconciliationService *billingapp.ReconciliationService,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService:        paymentService,
		reconciliationService: reconciliationService,
	}
}

// RecordPaymentRequest represents a request to record a payment against a bill
// @Description Request body for recording a payment
type RecordPaymentRequest struct {
	Amount            FlexibleAmount `json:"amount" swaggertype:"number" example:"200.00"`
	PaymentMethod     string         `json:"payment_method" binding:"required,oneof=CASH BANK_TRANSFER" example:"CASH"`
	PaymentDate       *time.Time     `json:"payment_date" example:"2026-03-11T14:30:00Z"`
	TransactionID     string         `json:"transaction_id" binding:"max=100" example:"TXN-20260311-017"`
	ReceivedBy        string         `json:"received_by" binding:"max=100" example:"cashier1"`
	ReceiptNo         string         `json:"receipt_no" binding:"max=50" example:"RCPT-0017"`
	BankName          string         `json:"bank_name" binding:"max=100" example:"State Bank"`
	CardLast4         string         `json:"card_last4" binding:"omitempty,len=4" example:"4242"`
	AuthorizationCode string         `json:"authorization_code" binding:"max=50"`
	Notes             string         `json:"notes" binding:"max=500"`
}

// Create godoc
// @ID           recordPayment
// @Summary      Record a payment against a bill
// @Description  Appends a payment to the bill. A repeated X-Idempotency-Key within the TTL is rejected instead of double charging.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        X-Idempotency-Key header string false "Idempotency key protecting against double submission"
// @Param        request body RecordPaymentRequest true "Payment request"
// @Success      201 {object} APIResponse[billing.Payment]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.RecordPaymentRequest{
		BillID:            billID,
		Amount:            req.Amount.Decimal,
		PaymentMethod:     billing.PaymentMethod(req.PaymentMethod),
		TransactionID:     req.TransactionID,
		ReceivedBy:        req.ReceivedBy,
		ReceiptNo:         req.ReceiptNo,
		BankName:          req.BankName,
		CardLast4:         req.CardLast4,
		AuthorizationCode: req.AuthorizationCode,
		Notes:             req.Notes,
		IdempotencyKey:    c.GetHeader(IdempotencyKeyHeader),
	}
	if req.PaymentDate != nil {
		appReq.PaymentDate = *req.PaymentDate
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID godoc
// @ID           getPaymentById
// @Summary      Get a payment of a bill
// @Tags         payments
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        payment_id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[billing.Payment]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id}/payments/{payment_id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}
	paymentID, err := uuid.Parse(c.Param("payment_id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, _, err := h.paymentService.GetPayment(c.Request.Context(), billID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List consolidated payment rows
// @Description  Returns one row per bill that received at least one payment, with the total paid, payment count, latest payment metadata and remaining balance
// @Tags         payments
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        patient_id query string false "Filter by patient ID" format(uuid)
// @Param        admission_id query string false "Filter by admission ID" format(uuid)
// @Success      200 {object} APIResponse[[]billingapp.PaymentRow]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	listReq, ok := h.bindListRequest(c)
	if !ok {
		return
	}

	filter := billing.BillFilter{Filter: listReq}
	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid patient ID")
			return
		}
		filter.PatientID = &patientID
	}
	if raw := c.Query("admission_id"); raw != "" {
		admissionID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid admission ID")
			return
		}
		filter.AdmissionID = &admissionID
	}

	rows, err := h.reconciliationService.PaymentRows(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rows)
}
