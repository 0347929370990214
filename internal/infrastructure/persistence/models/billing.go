package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/billing"
)

// BillModel is the persistence model for the Bill aggregate root.
type BillModel struct {
	AggregateModel
	BillNumber  string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	AdmissionID *uuid.UUID         `gorm:"type:uuid;index"`
	PatientID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	DueDate     *time.Time         `gorm:"index"`
	Status      billing.BillStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Items       []BillItemModel    `gorm:"foreignKey:BillID;references:ID"`
	Payments    []PaymentModel     `gorm:"foreignKey:BillID;references:ID"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill entity.
func (m *BillModel) ToDomain() *billing.Bill {
	b := &billing.Bill{
		BillNumber:  m.BillNumber,
		AdmissionID: m.AdmissionID,
		PatientID:   m.PatientID,
		TotalAmount: m.TotalAmount,
		DueDate:     m.DueDate,
		Status:      m.Status,
		Items:       make([]billing.BillItem, len(m.Items)),
		Payments:    make([]billing.Payment, len(m.Payments)),
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	for i, item := range m.Items {
		b.Items[i] = *item.ToDomain()
	}
	for i, p := range m.Payments {
		b.Payments[i] = *p.ToDomain()
	}
	return b
}

// FromDomain populates the persistence model from a domain Bill entity.
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BillNumber = b.BillNumber
	m.AdmissionID = b.AdmissionID
	m.PatientID = b.PatientID
	m.TotalAmount = b.TotalAmount
	m.DueDate = b.DueDate
	m.Status = b.Status
	m.Items = make([]BillItemModel, len(b.Items))
	for i, item := range b.Items {
		m.Items[i] = *BillItemModelFromDomain(b.ID, &item)
	}
	m.Payments = make([]PaymentModel, len(b.Payments))
	for i, p := range b.Payments {
		m.Payments[i] = *PaymentModelFromDomain(&p)
	}
}

// BillModelFromDomain creates a new persistence model from a domain Bill entity.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// BillItemModel is the persistence model for the BillItem entity.
type BillItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (BillItemModel) TableName() string {
	return "bill_items"
}

// ToDomain converts the persistence model to a domain BillItem entity.
func (m *BillItemModel) ToDomain() *billing.BillItem {
	return &billing.BillItem{
		ID:          m.ID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
	}
}

// BillItemModelFromDomain creates a new persistence model from a domain BillItem entity.
func BillItemModelFromDomain(billID uuid.UUID, i *billing.BillItem) *BillItemModel {
	return &BillItemModel{
		ID:          i.ID,
		BillID:      billID,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		TotalPrice:  i.TotalPrice,
	}
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	ID                uuid.UUID             `gorm:"type:uuid;primary_key"`
	BillID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentMethod     billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentDate       time.Time             `gorm:"not null;index"`
	TransactionID     string                `gorm:"type:varchar(100)"`
	ReceivedBy        string                `gorm:"type:varchar(200)"`
	ReceiptNo         string                `gorm:"type:varchar(100)"`
	BankName          string                `gorm:"type:varchar(200)"`
	CardLast4         string                `gorm:"type:varchar(4)"`
	AuthorizationCode string                `gorm:"type:varchar(100)"`
	Notes             string                `gorm:"type:varchar(500)"`
	CreatedAt         time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		ID:                m.ID,
		BillID:            m.BillID,
		Amount:            m.Amount,
		PaymentMethod:     m.PaymentMethod,
		PaymentDate:       m.PaymentDate,
		TransactionID:     m.TransactionID,
		ReceivedBy:        m.ReceivedBy,
		ReceiptNo:         m.ReceiptNo,
		BankName:          m.BankName,
		CardLast4:         m.CardLast4,
		AuthorizationCode: m.AuthorizationCode,
		Notes:             m.Notes,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                p.ID,
		BillID:            p.BillID,
		Amount:            p.Amount,
		PaymentMethod:     p.PaymentMethod,
		PaymentDate:       p.PaymentDate,
		TransactionID:     p.TransactionID,
		ReceivedBy:        p.ReceivedBy,
		ReceiptNo:         p.ReceiptNo,
		BankName:          p.BankName,
		CardLast4:         p.CardLast4,
		AuthorizationCode: p.AuthorizationCode,
		Notes:             p.Notes,
	}
}
