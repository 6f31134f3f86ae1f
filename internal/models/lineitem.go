package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is a single priced service entry belonging to one invoice.
//
// VehicleID and VendorID are copied from the parent invoice when the line
// item is created and kept in sync whenever the invoice's references change;
// they exist so line items can be queried by vehicle without a join.
type LineItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceID     string             `bson:"invoice_id" json:"invoice_id"`
	ServiceTypeID string             `bson:"service_type_id" json:"service_type_id"`
	VehicleID     string             `bson:"vehicle_id" json:"vehicle_id"`
	VendorID      string             `bson:"vendor_id" json:"vendor_id"`
	Description   string             `bson:"description" json:"description"`

	UnitPrice  float64 `bson:"unit_price" json:"unit_price"`
	Quantity   float64 `bson:"quantity" json:"quantity"`
	TotalPrice float64 `bson:"total_price" json:"total_price"` // round2(unit_price * quantity)
	Taxable    bool    `bson:"taxable" json:"taxable"`

	Mileage int `bson:"mileage" json:"mileage"` // odometer at service, floored

	Warranty        bool       `bson:"warranty" json:"warranty"`
	WarrantyMileage int        `bson:"warranty_mileage" json:"warranty_mileage"` // coverage in miles, floored
	WarrantyDate    *time.Time `bson:"warranty_date,omitempty" json:"warranty_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
