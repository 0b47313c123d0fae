package databases

// go generate: mockery --name CaseDocumentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/models"
)

const caseDocumentName = "casedocuments"

// CaseDocumentDatabase contains the methods to use with the case document database
type CaseDocumentDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type caseDocumentDatabase struct {
	db DatabaseHelper
}

// NewCaseDocumentDatabase initializes a new instance of case document database with the provided db connection
func NewCaseDocumentDatabase(db DatabaseHelper) CaseDocumentDatabase {
	return &caseDocumentDatabase{
		db: db,
	}
}

func (c *caseDocumentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error) {
	var docs []models.CaseDocument
	curr, err := c.db.Collection(caseDocumentName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = curr.Decode(&docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *caseDocumentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(caseDocumentName).InsertOne(ctx, document, opts...)
}
