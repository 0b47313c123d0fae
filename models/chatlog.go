package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ChatLog holds the structure for the chatlogs collection in mongo
type ChatLog struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ChatLogDetails     `json:"chatLog" bson:"chatLog"`
	Version int32              `json:"__v" bson:"__v"`
}

// ChatLogDetails holds the structure for the inner chat log structure. A chat log
// is written exactly once, alongside the case it originated, and never mutated.
type ChatLogDetails struct {
	CaseID           string             `json:"caseID" bson:"caseID"`
	ConversationText string             `json:"conversationText" bson:"conversationText"`
	Timestamp        primitive.DateTime `json:"timestamp" bson:"timestamp"`
}
