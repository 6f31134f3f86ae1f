package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN          string             `bson:"vin" json:"vin"`
	Make         string             `bson:"make" json:"make"`
	Model        string             `bson:"model" json:"model"`
	Year         int                `bson:"year" json:"year"`
	LicensePlate string             `bson:"license_plate" json:"license_plate"`
	Status       string             `bson:"status" json:"status"` // "active" or "inactive"

	// Compliance expiration dates. A nil date means the document is not
	// tracked for this vehicle; a set date feeds the permit alert evaluator.
	InsuranceExpirationDate    *time.Time `bson:"insurance_expiration_date,omitempty" json:"insurance_expiration_date,omitempty"`
	TagExpirationDate          *time.Time `bson:"tag_expiration_date,omitempty" json:"tag_expiration_date,omitempty"`
	InspectionExpirationDate   *time.Time `bson:"inspection_expiration_date,omitempty" json:"inspection_expiration_date,omitempty"`
	RegistrationExpirationDate *time.Time `bson:"registration_expiration_date,omitempty" json:"registration_expiration_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
