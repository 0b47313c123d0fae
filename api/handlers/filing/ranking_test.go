package filing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mediate-labs/mediation-api/api/handlers/filing"
	mocksdb "github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func newMediator(verified bool, details *models.MediatorProfessionalDetails) models.Mediator {
	return models.Mediator{
		ID: primitive.NewObjectID(),
		Details: models.MediatorDetails{
			Name:                "Test Mediator",
			IsVerified:          verified,
			ProfessionalDetails: details,
		},
	}
}

func TestSelectBestReturnsTopRankedMediator(t *testing.T) {
	pool := []models.Mediator{
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 75, CasesWon: 40, YearsExperience: 20}),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 12, YearsExperience: 5}),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 85, CasesWon: 30, YearsExperience: 10}),
	}

	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(pool, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, best)
	assert.Equal(t, pool[1].ID, best.ID)
}

func TestSelectBestExcludesUnverifiedMediators(t *testing.T) {
	pool := []models.Mediator{
		newMediator(false, &models.MediatorProfessionalDetails{SuccessRate: 99, CasesWon: 100, YearsExperience: 30}),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 50, CasesWon: 1, YearsExperience: 1}),
	}

	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(pool, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, best)
	assert.Equal(t, pool[1].ID, best.ID)
}

func TestSelectBestExcludesMediatorsWithoutProfessionalDetails(t *testing.T) {
	pool := []models.Mediator{
		newMediator(true, nil),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 10, CasesWon: 0, YearsExperience: 0}),
	}

	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(pool, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, best)
	assert.Equal(t, pool[1].ID, best.ID)
}

func TestSelectBestBreaksSuccessRateTieOnCasesWon(t *testing.T) {
	pool := []models.Mediator{
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 12, YearsExperience: 25}),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 20, YearsExperience: 2}),
	}

	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(pool, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, pool[1].ID, best.ID)
}

func TestSelectBestBreaksCasesWonTieOnYearsExperience(t *testing.T) {
	pool := []models.Mediator{
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 12, YearsExperience: 5}),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 12, YearsExperience: 9}),
	}

	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(pool, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, pool[1].ID, best.ID)
}

func TestSelectBestFullTieKeepsEarlierCandidate(t *testing.T) {
	pool := []models.Mediator{
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 12, YearsExperience: 5}),
		newMediator(true, &models.MediatorProfessionalDetails{SuccessRate: 90, CasesWon: 12, YearsExperience: 5}),
	}

	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(pool, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, pool[0].ID, best.ID)
}

func TestSelectBestEmptyPoolReturnsNil(t *testing.T) {
	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return([]models.Mediator{}, nil)

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, best)
}

func TestSelectBestPropagatesFindError(t *testing.T) {
	db := &mocksdb.MediatorDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	best, err := filing.Ranker{DB: db}.SelectBest(context.Background())
	assert.Error(t, err)
	assert.Nil(t, best)
}
