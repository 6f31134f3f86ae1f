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

// AlertCollection defines the interface for alert data operations.
type AlertCollection interface {
	InsertAlert(ctx context.Context, alert models.Alert) error
	FindAlertByID(ctx context.Context, id string) (*models.Alert, error)
	ReplaceAlert(ctx context.Context, id string, alert models.Alert) error
	DeleteAlert(ctx context.Context, id string) error
	DeleteAlertsByLineItem(ctx context.Context, lineItemID string) (int64, error)
	DeleteAlertsByInvoice(ctx context.Context, invoiceID string) (int64, error)
	CountPendingAlertsByInvoice(ctx context.Context, invoiceID string) (int64, error)
	FindPermitAlert(ctx context.Context, vehicleID, subcategory string, expiration time.Time) (*models.Alert, error)
	FindAlerts(ctx context.Context, filter bson.M, page Page) ([]models.Alert, int64, error)
}

// MongoAlertCollection implements AlertCollection for MongoDB.
type MongoAlertCollection struct {
	Collection *mongo.Collection
}

func (c *MongoAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, alert)
	return err
}

func (c *MongoAlertCollection) FindAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "alertId", Reason: "invalid id"}
	}

	var alert models.Alert
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Entity: "alert", ID: id}
		}
		return nil, err
	}
	return &alert, nil
}

func (c *MongoAlertCollection) ReplaceAlert(ctx context.Context, id string, alert models.Alert) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "alertId", Reason: "invalid id"}
	}

	alert.ID = objectID
	alert.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, alert)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "alert", ID: id}
	}
	return nil
}

func (c *MongoAlertCollection) DeleteAlert(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "alertId", Reason: "invalid id"}
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "alert", ID: id}
	}
	return nil
}

// DeleteAlertsByLineItem deletes every alert referencing a line item. Used by
// the cascading cleanup when a line item is deleted or materially changed.
func (c *MongoAlertCollection) DeleteAlertsByLineItem(ctx context.Context, lineItemID string) (int64, error) {
	result, err := c.Collection.DeleteMany(ctx, bson.M{"line_item_id": lineItemID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteAlertsByInvoice deletes every alert referencing an invoice.
func (c *MongoAlertCollection) DeleteAlertsByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	result, err := c.Collection.DeleteMany(ctx, bson.M{"invoice_id": invoiceID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// CountPendingAlertsByInvoice counts alerts in Pending status for an invoice.
func (c *MongoAlertCollection) CountPendingAlertsByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{
		"invoice_id": invoiceID,
		"status":     models.AlertStatusPending,
	})
}

// FindPermitAlert looks up an existing permit alert for a vehicle, compliance
// subcategory and expiration value. Returns (nil, nil) when none exists.
func (c *MongoAlertCollection) FindPermitAlert(ctx context.Context, vehicleID, subcategory string, expiration time.Time) (*models.Alert, error) {
	var alert models.Alert
	err := c.Collection.FindOne(ctx, bson.M{
		"vehicle_id":      vehicleID,
		"type":            models.AlertTypePermit,
		"category":        models.AlertCategoryPermitVehicle,
		"reasons":         models.AlertReasonExpirationDate,
		"subcategory":     subcategory,
		"expiration_date": expiration,
	}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (c *MongoAlertCollection) FindAlerts(ctx context.Context, filter bson.M, page Page) ([]models.Alert, int64, error) {
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

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}
