package databases

// go generate: mockery --name PartyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/models"
)

const partyName = "parties"

// PartyDatabase contains the methods to use with the party database
type PartyDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Party, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Party, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type partyDatabase struct {
	db DatabaseHelper
}

// NewPartyDatabase initializes a new instance of party database with the provided db connection
func NewPartyDatabase(db DatabaseHelper) PartyDatabase {
	return &partyDatabase{
		db: db,
	}
}

func (p *partyDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Party, error) {
	party := &models.Party{}
	err := p.db.Collection(partyName).FindOne(ctx, filter, opts...).Decode(&party)
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (p *partyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Party, error) {
	var parties []models.Party
	curr, err := p.db.Collection(partyName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = curr.Decode(&parties)
	if err != nil {
		return nil, err
	}
	return parties, nil
}

func (p *partyDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return p.db.Collection(partyName).InsertOne(ctx, document, opts...)
}
