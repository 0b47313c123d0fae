package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Party holds the structure for the parties collection in mongo
type Party struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details PartyDetails       `json:"party" bson:"party"`
	Version int32              `json:"__v" bson:"__v"`
}

// PartyDetails holds the structure for the inner party structure. A party is a
// participant reference attached to a case, either backed by a registered user
// (UserID set, IsRegistered true) or representing an unregistered external
// participant known only by email.
type PartyDetails struct {
	UserID       string `json:"userID,omitempty" bson:"userID,omitempty"` // hex ObjectID of the linked user, empty when unregistered
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	Phone        string `json:"phone" bson:"phone"`
	IsRegistered bool   `json:"isRegistered" bson:"isRegistered"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
