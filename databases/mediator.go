package databases

// go generate: mockery --name MediatorDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/models"
)

const mediatorName = "mediators"

// MediatorDatabase contains the methods to use with the mediator database
type MediatorDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Mediator, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Mediator, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type mediatorDatabase struct {
	db DatabaseHelper
}

// NewMediatorDatabase initializes a new instance of mediator database with the provided db connection
func NewMediatorDatabase(db DatabaseHelper) MediatorDatabase {
	return &mediatorDatabase{
		db: db,
	}
}

func (m *mediatorDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Mediator, error) {
	mediator := &models.Mediator{}
	err := m.db.Collection(mediatorName).FindOne(ctx, filter, opts...).Decode(&mediator)
	if err != nil {
		return nil, err
	}
	return mediator, nil
}

func (m *mediatorDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Mediator, error) {
	var mediators []models.Mediator
	curr, err := m.db.Collection(mediatorName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = curr.Decode(&mediators)
	if err != nil {
		return nil, err
	}
	return mediators, nil
}

func (m *mediatorDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return m.db.Collection(mediatorName).InsertOne(ctx, document, opts...)
}

func (m *mediatorDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return m.db.Collection(mediatorName).UpdateOne(ctx, filter, update, opts...)
}
