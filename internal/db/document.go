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

// DocumentCollection defines the interface for document metadata operations.
type DocumentCollection interface {
	InsertDocument(ctx context.Context, doc models.Document) error
	FindDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ReplaceDocument(ctx context.Context, id string, doc models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	FindDocuments(ctx context.Context, filter bson.M, page Page) ([]models.Document, int64, error)
}

// MongoDocumentCollection implements DocumentCollection for MongoDB.
type MongoDocumentCollection struct {
	Collection *mongo.Collection
}

func (c *MongoDocumentCollection) InsertDocument(ctx context.Context, doc models.Document) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, doc)
	return err
}

func (c *MongoDocumentCollection) FindDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "documentId", Reason: "invalid id"}
	}

	var doc models.Document
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Entity: "document", ID: id}
		}
		return nil, err
	}
	return &doc, nil
}

func (c *MongoDocumentCollection) ReplaceDocument(ctx context.Context, id string, doc models.Document) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "documentId", Reason: "invalid id"}
	}

	doc.ID = objectID
	doc.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "document", ID: id}
	}
	return nil
}

func (c *MongoDocumentCollection) DeleteDocument(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ValidationError{Field: "documentId", Reason: "invalid id"}
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Entity: "document", ID: id}
	}
	return nil
}

func (c *MongoDocumentCollection) FindDocuments(ctx context.Context, filter bson.M, page Page) ([]models.Document, int64, error) {
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

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
