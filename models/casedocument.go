package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseDocument holds the structure for the casedocuments collection in mongo
type CaseDocument struct {
	ID      primitive.ObjectID  `json:"_id" bson:"_id"`
	Details CaseDocumentDetails `json:"caseDocument" bson:"caseDocument"`
	Version int32               `json:"__v" bson:"__v"`
}

// CaseDocumentDetails holds the metadata for a document uploaded against a case.
// The file itself lives in cloudinary; StoredURL points at it.
type CaseDocumentDetails struct {
	CaseID       string `json:"caseID" bson:"caseID"`
	DocumentType string `json:"documentType" bson:"documentType"` // e.g. "Marriage certificate"
	FileName     string `json:"fileName" bson:"fileName"`
	StoredURL    string `json:"storedURL" bson:"storedURL"`
	Status       string `json:"status" bson:"status"` // "Uploaded", "Verified", "Rejected"

	UploadedAt primitive.DateTime `json:"uploadedAt" bson:"uploadedAt"`
}
