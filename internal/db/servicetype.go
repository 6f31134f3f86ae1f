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

// ServiceTypeCollection defines the interface for service catalog operations.
type ServiceTypeCollection interface {
	InsertServiceType(ctx context.Context, serviceType models.ServiceType) error
	FindServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error)
	ReplaceServiceType(ctx context.Context, id string, serviceType models.ServiceType) error
	DeleteServiceType(ctx context.Context, id string) error
	FindServiceTypes(ctx context.Context, filter bson.M, page Page) ([]models.ServiceType, int64, error)
}

// MongoServiceTypeCollection implements ServiceTypeCollection for MongoDB.
type MongoServiceTypeCollection struct {
	Collection *mongo.Collection
}

func (c *MongoServiceTypeCollection) InsertServiceType(ctx context.Context, serviceType models.ServiceType) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, serviceType)
	return err
}

func (c *MongoServiceTypeCollection) FindServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "serviceTypeId", Reason: "invalid id"}
	}

	var serviceType models.ServiceType
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&serviceType)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Entity: "service type", ID: id}
		}
		return nil, err
	}
	return &serviceType, nil
}

func (c *MongoServiceTypeCollection) ReplaceServiceType(ctx context.Context, id string, serviceType models.ServiceType) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "serviceTypeId", Reason: "invalid id"}
	}

	serviceType.ID = objectID
	serviceType.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, serviceType)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "service type", ID: id}
	}
	return nil
}

func (c *MongoServiceTypeCollection) DeleteServiceType(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "serviceTypeId", Reason: "invalid id"}
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "service type", ID: id}
	}
	return nil
}

func (c *MongoServiceTypeCollection) FindServiceTypes(ctx context.Context, filter bson.M, page Page) ([]models.ServiceType, int64, error) {
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

	var serviceTypes []models.ServiceType
	if err := cursor.All(ctx, &serviceTypes); err != nil {
		return nil, 0, err
	}
	return serviceTypes, total, nil
}
