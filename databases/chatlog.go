package databases

// go generate: mockery --name ChatLogDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/models"
)

const chatLogName = "chatlogs"

// ChatLogDatabase contains the methods to use with the chat log database
type ChatLogDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatLog, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type chatLogDatabase struct {
	db DatabaseHelper
}

// NewChatLogDatabase initializes a new instance of chat log database with the provided db connection
func NewChatLogDatabase(db DatabaseHelper) ChatLogDatabase {
	return &chatLogDatabase{
		db: db,
	}
}

func (c *chatLogDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatLog, error) {
	var logs []models.ChatLog
	curr, err := c.db.Collection(chatLogName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = curr.Decode(&logs)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *chatLogDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(chatLogName).InsertOne(ctx, document, opts...)
}
