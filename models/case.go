package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case status values set by the filing workflow and the mediator dashboard.
// Status is stored as an opaque string; downstream workflows may write others.
const (
	CaseStatusOpen     = "Open"
	CaseStatusResolved = "Resolved"
)

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseDetails        `json:"case" bson:"case"`
	Version int32              `json:"__v" bson:"__v"`
}

// CaseDetails holds the structure for the inner case structure as defined in the
// cases collection in mongo
type CaseDetails struct {
	CaseType    string `json:"caseType" bson:"caseType"`
	Description string `json:"description" bson:"description"`
	Status      string `json:"status" bson:"status"`

	// Party1ID is the filer and is always a registered user.
	Party1ID string `json:"party1ID" bson:"party1ID"`
	// Party2ID is set only when the counter-party resolved to a registered user.
	Party2ID string `json:"party2ID,omitempty" bson:"party2ID,omitempty"`
	// Party2PartyID references the party row created for the counter-party.
	Party2PartyID string `json:"party2PartyID,omitempty" bson:"party2PartyID,omitempty"`
	// MediatorID is empty when no eligible mediator existed at filing time.
	MediatorID string `json:"mediatorID,omitempty" bson:"mediatorID,omitempty"`

	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	ResolvedAt primitive.DateTime `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

// IsResolved reports whether the case has been marked resolved
func (c CaseDetails) IsResolved() bool {
	return c.Status == CaseStatusResolved
}
