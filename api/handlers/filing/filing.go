package filing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// ErrFilerNotFound is returned when the filing user id does not resolve to a
// registered user. Nothing is persisted in that case.
var ErrFilerNotFound = errors.New("filer not found")

// externalPartyName is the placeholder display name for counter-parties that
// have no registered account.
const externalPartyName = "External Party"

// Request carries the inputs for filing a new case
type Request struct {
	FilerID           string `json:"filerID"`
	CounterPartyEmail string `json:"counterPartyEmail"`
	Description       string `json:"caseDescription"`
	Category          string `json:"caseCategory"`
	ConversationLog   string `json:"conversationLog"`
}

// Service runs the case filing workflow: validate the filer, resolve the
// counter-party to a party row, pick the best available mediator and persist
// the case together with its originating chat log.
type Service struct {
	UserDB     databases.UserDatabase
	PartyDB    databases.PartyDatabase
	CaseDB     databases.CaseDatabase
	ChatLogDB  databases.ChatLogDatabase
	Client     databases.ClientHelper
	Ranker     Ranker

	// PartyDedupe reuses an existing party row for the same email instead of
	// inserting a fresh one per filing. Off by default.
	PartyDedupe bool

	// Now is overridable in tests
	Now func() time.Time
}

// FileNewCase files a case for the given filer against the counter-party email.
// The case and its chat log commit in one transaction; the counter-party's
// party row is committed beforehand and is not rolled back if the case
// transaction fails.
func (s *Service) FileNewCase(ctx context.Context, req Request) (*models.Case, error) {
	filerID, err := primitive.ObjectIDFromHex(req.FilerID)
	if err != nil {
		return nil, ErrFilerNotFound
	}
	filer, err := s.UserDB.FindOne(ctx, bson.M{"_id": filerID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFilerNotFound
		}
		return nil, fmt.Errorf("failed to look up filer: %w", err)
	}

	party, err := s.resolveCounterParty(ctx, req.CounterPartyEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve counter-party: %w", err)
	}

	best, err := s.Ranker.SelectBest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select mediator: %w", err)
	}

	now := primitive.NewDateTimeFromTime(s.now())
	newCase := models.Case{
		ID: primitive.NewObjectID(),
		Details: models.CaseDetails{
			CaseType:      req.Category,
			Description:   req.Description,
			Status:        models.CaseStatusOpen,
			Party1ID:      filer.ID.Hex(),
			Party2PartyID: party.ID.Hex(),
			CreatedAt:     now,
		},
	}
	if party.Details.IsRegistered {
		newCase.Details.Party2ID = party.Details.UserID
	}
	if best != nil {
		newCase.Details.MediatorID = best.ID.Hex()
	} else {
		zap.S().Infow("no eligible mediator available, filing case unassigned",
			"filerID", req.FilerID,
		)
	}

	chatLog := models.ChatLog{
		ID: primitive.NewObjectID(),
		Details: models.ChatLogDetails{
			CaseID:           newCase.ID.Hex(),
			ConversationText: req.ConversationLog,
			Timestamp:        now,
		},
	}

	// case and chat log commit or roll back together
	_, err = s.Client.WithTransaction(ctx, func(sc context.Context) (interface{}, error) {
		if _, err := s.CaseDB.InsertOne(sc, newCase); err != nil {
			return nil, err
		}
		if _, err := s.ChatLogDB.InsertOne(sc, chatLog); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist case: %w", err)
	}

	zap.S().Infow("case filed",
		"caseID", newCase.ID.Hex(),
		"party1ID", newCase.Details.Party1ID,
		"mediatorID", newCase.Details.MediatorID,
	)
	return &newCase, nil
}

// resolveCounterParty resolves an email to a party row. A registered user gets
// a linked party carrying their name, email and phone; anyone else gets an
// external party known only by email.
func (s *Service) resolveCounterParty(ctx context.Context, email string) (*models.Party, error) {
	if s.PartyDedupe {
		existing, err := s.PartyDB.FindOne(ctx, bson.M{"party.email": email})
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}

	now := primitive.NewDateTimeFromTime(s.now())
	party := models.Party{ID: primitive.NewObjectID()}

	user, err := s.UserDB.FindOne(ctx, bson.M{"user.email": email})
	switch {
	case err == nil:
		party.Details = models.PartyDetails{
			UserID:       user.ID.Hex(),
			Name:         user.Details.Name,
			Email:        user.Details.Email,
			Phone:        user.Details.Phone,
			IsRegistered: true,
			CreatedAt:    now,
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		party.Details = models.PartyDetails{
			Name:         externalPartyName,
			Email:        email,
			IsRegistered: false,
			CreatedAt:    now,
		}
	default:
		return nil, err
	}

	if _, err := s.PartyDB.InsertOne(ctx, party); err != nil {
		return nil, err
	}
	return &party, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
