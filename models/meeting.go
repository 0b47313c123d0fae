package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Meeting statuses
const (
	MeetingStatusScheduled = "Scheduled"
	MeetingStatusCompleted = "Completed"
	MeetingStatusCancelled = "Cancelled"
)

// Meeting holds the structure for the meetings collection in mongo
type Meeting struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details MeetingDetails     `json:"meeting" bson:"meeting"`
	Version int32              `json:"__v" bson:"__v"`
}

// MeetingDetails holds the structure for the inner meeting structure as defined
// in the meetings collection in mongo
type MeetingDetails struct {
	CaseID      string `json:"caseID" bson:"caseID"`
	MediatorID  string `json:"mediatorID" bson:"mediatorID"`
	Description string `json:"description" bson:"description"`
	Status      string `json:"status" bson:"status"`

	MeetingDate primitive.DateTime `json:"meetingDate" bson:"meetingDate"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
