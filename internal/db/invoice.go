package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// InvoiceCollection defines the interface for invoice data operations.
//
// UpdateInvoiceTotals and UpdateInvoiceStatus are field-scoped writes: they
// touch only the named fields so a concurrent replace of the rest of the
// document is never clobbered by the consistency engine.
type InvoiceCollection interface {
	InsertInvoice(ctx context.Context, invoice models.Invoice) error
	FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error)
	FindInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error)
	ReplaceInvoice(ctx context.Context, id string, invoice models.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	UpdateInvoiceTotals(ctx context.Context, id string, subTotal, tax, invoiceAmount float64) error
	UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error
	FindInvoices(ctx context.Context, filter bson.M, page Page) ([]models.Invoice, int64, error)
}

// MongoInvoiceCollection implements InvoiceCollection for MongoDB.
type MongoInvoiceCollection struct {
	Collection *mongo.Collection
}

func (c *MongoInvoiceCollection) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, invoice)
	return err
}

func (c *MongoInvoiceCollection) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "invoiceId", Reason: "invalid id"}
	}

	var invoice models.Invoice
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Entity: "invoice", ID: id}
		}
		return nil, err
	}
	return &invoice, nil
}

// FindInvoiceByNumber finds an invoice by its globally unique invoice number.
// Returns (nil, nil) when no invoice carries the number.
func (c *MongoInvoiceCollection) FindInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := c.Collection.FindOne(ctx, bson.M{"invoice_number": number}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (c *MongoInvoiceCollection) ReplaceInvoice(ctx context.Context, id string, invoice models.Invoice) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "invoiceId", Reason: "invalid id"}
	}

	invoice.ID = objectID
	invoice.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, invoice)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "invoice", ID: id}
	}
	return nil
}

func (c *MongoInvoiceCollection) DeleteInvoice(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "invoiceId", Reason: "invalid id"}
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "invoice", ID: id}
	}
	return nil
}

// UpdateInvoiceTotals writes the three derived money fields, leaving every
// other invoice field untouched.
func (c *MongoInvoiceCollection) UpdateInvoiceTotals(ctx context.Context, id string, subTotal, tax, invoiceAmount float64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "invoiceId", Reason: "invalid id"}
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"sub_total":      subTotal,
			"tax":            tax,
			"invoice_amount": invoiceAmount,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "invoice", ID: id}
	}
	return nil
}

// UpdateInvoiceStatus writes only the status field.
func (c *MongoInvoiceCollection) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "invoiceId", Reason: "invalid id"}
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "invoice", ID: id}
	}
	return nil
}

func (c *MongoInvoiceCollection) FindInvoices(ctx context.Context, filter bson.M, page Page) ([]models.Invoice, int64, error) {
	if c.Collection == nil {
		return nil, 0, fmt.Errorf("mongo collection is nil")
	}

	total, err := c.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(page.Skip)
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}
