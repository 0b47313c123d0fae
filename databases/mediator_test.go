package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func TestMediatorDatabase_Find(t *testing.T) {
	mockedID := primitive.NewObjectID()

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var curHelperErr databases.CursorHelper
	var curHelperCorrect databases.CursorHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	curHelperErr = &mocks.CursorHelper{}
	curHelperCorrect = &mocks.CursorHelper{}

	curHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	curHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Mediator)
		(*arg) = []models.Mediator{{ID: mockedID}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(curHelperErr, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(curHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "mediators").Return(collectionHelper)

	// Create new database with mocked Database interface
	mediatorDba := databases.NewMediatorDatabase(dbHelper)

	mediators, err := mediatorDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, mediators)
	assert.EqualError(t, err, "mocked-error")

	mediators, err = mediatorDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.Mediator{{ID: mockedID}}, mediators)
	assert.NoError(t, err)
}

func TestMediatorDatabase_UpdateOne(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	filter := bson.M{"_id": primitive.NewObjectID()}
	update := bson.M{"$set": bson.M{"mediator.isVerified": true}}

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), filter, update).
		Return(nil, errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "mediators").Return(collectionHelper)

	mediatorDba := databases.NewMediatorDatabase(dbHelper)

	res, err := mediatorDba.UpdateOne(context.Background(), filter, update)

	assert.Nil(t, res)
	assert.EqualError(t, err, "mocked-error")
}
