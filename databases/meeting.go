package databases

// go generate: mockery --name MeetingDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/models"
)

const meetingName = "meetings"

// MeetingDatabase contains the methods to use with the meeting database
type MeetingDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Meeting, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Meeting, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type meetingDatabase struct {
	db DatabaseHelper
}

// NewMeetingDatabase initializes a new instance of meeting database with the provided db connection
func NewMeetingDatabase(db DatabaseHelper) MeetingDatabase {
	return &meetingDatabase{
		db: db,
	}
}

func (m *meetingDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Meeting, error) {
	meeting := &models.Meeting{}
	err := m.db.Collection(meetingName).FindOne(ctx, filter, opts...).Decode(&meeting)
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

func (m *meetingDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Meeting, error) {
	var meetings []models.Meeting
	curr, err := m.db.Collection(meetingName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = curr.Decode(&meetings)
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (m *meetingDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return m.db.Collection(meetingName).CountDocuments(ctx, filter, opts...)
}

func (m *meetingDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return m.db.Collection(meetingName).InsertOne(ctx, document, opts...)
}

func (m *meetingDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return m.db.Collection(meetingName).UpdateOne(ctx, filter, update, opts...)
}

func (m *meetingDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return m.db.Collection(meetingName).DeleteOne(ctx, filter, opts...)
}
