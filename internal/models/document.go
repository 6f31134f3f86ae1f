package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a stored compliance or invoice attachment. The binary content
// lives in the blob store; this record holds the metadata.
type Document struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	VehicleID      string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	InvoiceID      string             `bson:"invoice_id,omitempty" json:"invoice_id,omitempty"`
	ContentType    string             `bson:"content_type" json:"content_type"`
	Size           int64              `bson:"size" json:"size"`
	StoragePath    string             `bson:"storage_path" json:"-"`
	ExpirationDate *time.Time         `bson:"expiration_date,omitempty" json:"expiration_date,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
