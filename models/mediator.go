package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Mediator holds the structure for the mediators collection in mongo
type Mediator struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details MediatorDetails    `json:"mediator" bson:"mediator"`
	Version int32              `json:"__v" bson:"__v"`
}

// MediatorDetails holds the structure for the inner mediator structure as defined
// in the mediators collection in mongo
type MediatorDetails struct {
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	IsVerified bool   `json:"isVerified" bson:"isVerified"`

	// ProfessionalDetails is absent until the mediator completes onboarding.
	// A mediator without it cannot be ranked for assignment.
	ProfessionalDetails *MediatorProfessionalDetails `json:"professionalDetails,omitempty" bson:"professionalDetails,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// MediatorProfessionalDetails holds the ranking statistics for a mediator
type MediatorProfessionalDetails struct {
	SuccessRate     float64 `json:"successRate" bson:"successRate"`
	CasesWon        int     `json:"casesWon" bson:"casesWon"`
	YearsExperience int     `json:"yearsExperience" bson:"yearsExperience"`
}
