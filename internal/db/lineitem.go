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

// LineItemCollection defines the interface for line item data operations.
type LineItemCollection interface {
	InsertLineItem(ctx context.Context, item models.LineItem) error
	FindLineItemByID(ctx context.Context, id string) (*models.LineItem, error)
	ReplaceLineItem(ctx context.Context, id string, item models.LineItem) error
	DeleteLineItem(ctx context.Context, id string) error
	FindLineItemsByInvoice(ctx context.Context, invoiceID string) ([]models.LineItem, error)
	FindLineItemsByVehicleService(ctx context.Context, vehicleID, serviceTypeID string) ([]models.LineItem, error)
	UpdateLineItemRefs(ctx context.Context, invoiceID, vehicleID, vendorID string) (int64, error)
	DeleteLineItemsByInvoice(ctx context.Context, invoiceID string) (int64, error)
	FindLineItems(ctx context.Context, filter bson.M, page Page) ([]models.LineItem, int64, error)
}

// MongoLineItemCollection implements LineItemCollection for MongoDB.
type MongoLineItemCollection struct {
	Collection *mongo.Collection
}

func (c *MongoLineItemCollection) InsertLineItem(ctx context.Context, item models.LineItem) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, item)
	return err
}

func (c *MongoLineItemCollection) FindLineItemByID(ctx context.Context, id string) (*models.LineItem, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "lineItemId", Reason: "invalid id"}
	}

	var item models.LineItem
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Entity: "line item", ID: id}
		}
		return nil, err
	}
	return &item, nil
}

func (c *MongoLineItemCollection) ReplaceLineItem(ctx context.Context, id string, item models.LineItem) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "lineItemId", Reason: "invalid id"}
	}

	item.ID = objectID
	item.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, item)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "line item", ID: id}
	}
	return nil
}

func (c *MongoLineItemCollection) DeleteLineItem(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "lineItemId", Reason: "invalid id"}
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "line item", ID: id}
	}
	return nil
}

// FindLineItemsByInvoice returns every line item belonging to an invoice.
func (c *MongoLineItemCollection) FindLineItemsByInvoice(ctx context.Context, invoiceID string) ([]models.LineItem, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"invoice_id": invoiceID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.LineItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindLineItemsByVehicleService returns every line item for one vehicle and
// service type, across all invoices. The alert rules key on this pair.
func (c *MongoLineItemCollection) FindLineItemsByVehicleService(ctx context.Context, vehicleID, serviceTypeID string) ([]models.LineItem, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{
		"vehicle_id":      vehicleID,
		"service_type_id": serviceTypeID,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.LineItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateLineItemRefs rewrites the denormalized vehicle/vendor references on
// every line item of an invoice. Used when the invoice's references change.
func (c *MongoLineItemCollection) UpdateLineItemRefs(ctx context.Context, invoiceID, vehicleID, vendorID string) (int64, error) {
	result, err := c.Collection.UpdateMany(
		ctx,
		bson.M{"invoice_id": invoiceID},
		bson.M{"$set": bson.M{
			"vehicle_id": vehicleID,
			"vendor_id":  vendorID,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DeleteLineItemsByInvoice deletes every line item of an invoice.
func (c *MongoLineItemCollection) DeleteLineItemsByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	result, err := c.Collection.DeleteMany(ctx, bson.M{"invoice_id": invoiceID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (c *MongoLineItemCollection) FindLineItems(ctx context.Context, filter bson.M, page Page) ([]models.LineItem, int64, error) {
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

	var items []models.LineItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
