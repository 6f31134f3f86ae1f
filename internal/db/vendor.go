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

// VendorCollection defines the interface for vendor data operations.
type VendorCollection interface {
	InsertVendor(ctx context.Context, vendor models.Vendor) error
	FindVendorByID(ctx context.Context, id string) (*models.Vendor, error)
	ReplaceVendor(ctx context.Context, id string, vendor models.Vendor) error
	DeleteVendor(ctx context.Context, id string) error
	FindVendors(ctx context.Context, filter bson.M, page Page) ([]models.Vendor, int64, error)
}

// MongoVendorCollection implements VendorCollection for MongoDB.
type MongoVendorCollection struct {
	Collection *mongo.Collection
}

func (c *MongoVendorCollection) InsertVendor(ctx context.Context, vendor models.Vendor) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, vendor)
	return err
}

func (c *MongoVendorCollection) FindVendorByID(ctx context.Context, id string) (*models.Vendor, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "vendorId", Reason: "invalid id"}
	}

	var vendor models.Vendor
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vendor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Entity: "vendor", ID: id}
		}
		return nil, err
	}
	return &vendor, nil
}

func (c *MongoVendorCollection) ReplaceVendor(ctx context.Context, id string, vendor models.Vendor) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "vendorId", Reason: "invalid id"}
	}

	vendor.ID = objectID
	vendor.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, vendor)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "vendor", ID: id}
	}
	return nil
}

func (c *MongoVendorCollection) DeleteVendor(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "vendorId", Reason: "invalid id"}
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "vendor", ID: id}
	}
	return nil
}

func (c *MongoVendorCollection) FindVendors(ctx context.Context, filter bson.M, page Page) ([]models.Vendor, int64, error) {
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

	var vendors []models.Vendor
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}
