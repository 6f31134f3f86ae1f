package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert types, one per rule family.
const (
	AlertTypeWarranty    = "WARRANTY"
	AlertTypeHigherPrice = "HIGHER_PRICE"
	AlertTypeSameService = "SAME_SERVICE"
	AlertTypePermit      = "PERMIT"
)

// Alert categories and subcategories.
const (
	AlertCategoryLineItem      = "InvoiceLineItem"
	AlertCategoryPermitVehicle = "PermitVehicle"

	AlertSubcategoryDateValid        = "DATE_VALID"
	AlertSubcategoryMileageValid     = "MILEAGE_VALID"
	AlertSubcategoryLowerPriceFound  = "LOWER_PRICE_FOUND"
	AlertSubcategorySameServiceFound = "SAME_SERVICE_FOUND"

	// Permit alert subcategories, one per compliance document.
	AlertSubcategoryInsurance        = "Insurance"
	AlertSubcategoryTag              = "Tag"
	AlertSubcategoryAnnualInspection = "AnnualInspection"
	AlertSubcategoryRegistration     = "Registration"

	AlertReasonExpirationDate = "Expiration Date"
)

// AlertStatus is the review state of an alert. An invoice with at least one
// Pending alert sits in PendingAlertReview until every alert leaves Pending.
type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "Pending"
	AlertStatusAcknowledged AlertStatus = "Acknowledged"
	AlertStatusOverridden   AlertStatus = "Overridden"
	AlertStatusResolved     AlertStatus = "Resolved"
)

// IsValidAlertStatus checks if a status is a known alert review state.
func IsValidAlertStatus(s AlertStatus) bool {
	switch s {
	case AlertStatusPending, AlertStatusAcknowledged, AlertStatusOverridden, AlertStatusResolved:
		return true
	default:
		return false
	}
}

// Resolution records who closed an alert and how.
type Resolution struct {
	Action     string    `bson:"action" json:"action"` // "acknowledge", "override", "resolve"
	Actor      string    `bson:"actor" json:"actor"`
	ResolvedAt time.Time `bson:"resolved_at" json:"resolved_at"`
}

// Alert is an advisory record produced by the rule engine (or entered by an
// administrator). It weakly references the records involved; deleting a line
// item deletes the alerts that reference it.
type Alert struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type        string             `bson:"type" json:"type"`
	Category    string             `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory" json:"subcategory"`
	Reasons     string             `bson:"reasons" json:"reasons"`
	Message     string             `bson:"message" json:"message"`

	VehicleID     string `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	InvoiceID     string `bson:"invoice_id,omitempty" json:"invoice_id,omitempty"`
	LineItemID    string `bson:"line_item_id,omitempty" json:"line_item_id,omitempty"`
	ServiceTypeID string `bson:"service_type_id,omitempty" json:"service_type_id,omitempty"`

	// ValidLineItemID points at the prior line item whose warranty, price or
	// service triggered the rule.
	ValidLineItemID string `bson:"valid_line_item_id,omitempty" json:"valid_line_item_id,omitempty"`

	// ExpirationDate keys permit alerts; the permit evaluator creates at most
	// one alert per (vehicle, subcategory, expiration date).
	ExpirationDate *time.Time `bson:"expiration_date,omitempty" json:"expiration_date,omitempty"`

	Status     AlertStatus `bson:"status" json:"status"`
	Resolution *Resolution `bson:"resolution,omitempty" json:"resolution,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
