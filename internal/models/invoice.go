package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft              InvoiceStatus = "Draft"
	InvoiceStatusPendingAlertReview InvoiceStatus = "PendingAlertReview"
	InvoiceStatusApproved           InvoiceStatus = "Approved"
	InvoiceStatusRejected           InvoiceStatus = "Rejected"
	InvoiceStatusPaid               InvoiceStatus = "Paid"
	InvoiceStatusCancelled          InvoiceStatus = "Cancelled"
)

// IsValidInvoiceStatus checks if a status is one of the known lifecycle states.
func IsValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPendingAlertReview, InvoiceStatusApproved,
		InvoiceStatusRejected, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Mutable reports whether line items under an invoice in this status may be
// created, updated or deleted.
func (s InvoiceStatus) Mutable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusPendingAlertReview
}

// Invoice represents a vendor maintenance invoice for one vehicle.
//
// SubTotal, Tax and InvoiceAmount are derived fields. Once the invoice has
// line items they are written only by the totals aggregator, never from
// caller input.
type Invoice struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID     string             `bson:"vehicle_id" json:"vehicle_id"`
	VendorID      string             `bson:"vendor_id" json:"vendor_id"`
	InvoiceNumber string             `bson:"invoice_number" json:"invoice_number"` // globally unique
	Description   string             `bson:"description" json:"description"`

	InvoiceDate    time.Time `bson:"invoice_date" json:"invoice_date"`
	OrderStartDate time.Time `bson:"order_start_date" json:"order_start_date"`
	OrderEndDate   time.Time `bson:"order_end_date" json:"order_end_date"`

	SubTotal      float64 `bson:"sub_total" json:"sub_total"`
	Tax           float64 `bson:"tax" json:"tax"`
	InvoiceAmount float64 `bson:"invoice_amount" json:"invoice_amount"` // round2(sub_total + tax)

	Status    InvoiceStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}
