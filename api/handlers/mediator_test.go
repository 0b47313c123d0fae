package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mediate-labs/mediation-api/api/handlers"
	mocksdb "github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func TestMediator_BestMediatorHandlerNoEligible(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/mediators/best", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	mediatorDB := &mocksdb.MediatorDatabase{}
	mediatorDB.On("Find", mock.Anything, mock.Anything).Return([]models.Mediator{
		{ID: primitive.NewObjectID(), Details: models.MediatorDetails{IsVerified: false}},
	}, nil)

	m := handlers.Mediator{DB: mediatorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.BestMediatorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMediator_BestMediatorHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/mediators/best", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	best := models.Mediator{
		ID: primitive.NewObjectID(),
		Details: models.MediatorDetails{
			Name:       "Best Mediator",
			IsVerified: true,
			ProfessionalDetails: &models.MediatorProfessionalDetails{
				SuccessRate:     95,
				CasesWon:        40,
				YearsExperience: 12,
			},
		},
	}
	other := models.Mediator{
		ID: primitive.NewObjectID(),
		Details: models.MediatorDetails{
			IsVerified: true,
			ProfessionalDetails: &models.MediatorProfessionalDetails{
				SuccessRate:     60,
				CasesWon:        5,
				YearsExperience: 2,
			},
		},
	}

	mediatorDB := &mocksdb.MediatorDatabase{}
	mediatorDB.On("Find", mock.Anything, mock.Anything).Return([]models.Mediator{other, best}, nil)

	m := handlers.Mediator{DB: mediatorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.BestMediatorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Mediator
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, best.ID, got.ID)
}

func TestMediator_VerifyMediatorHandler(t *testing.T) {
	mediatorID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"verified": true}`)
	req, err := http.NewRequest("PATCH", "/api/v1/mediator/"+mediatorID.Hex()+"/verify", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"mediator_id": mediatorID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	mediatorDB := &mocksdb.MediatorDatabase{}

	var capturedUpdate bson.M
	mediatorDB.On("UpdateOne", mock.Anything, bson.M{"_id": mediatorID}, mock.Anything).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2).(bson.M)
	}).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	mediatorDB.On("FindOne", mock.Anything, bson.M{"_id": mediatorID}).Return(&models.Mediator{
		ID:      mediatorID,
		Details: models.MediatorDetails{IsVerified: true},
	}, nil)

	m := handlers.Mediator{DB: mediatorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.VerifyMediatorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := capturedUpdate["$set"].(bson.M)
	assert.Equal(t, true, set["mediator.isVerified"])
}

func TestMediator_MediatorStatsHandler(t *testing.T) {
	mediatorID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/mediator/"+mediatorID+"/stats", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"mediator_id": mediatorID})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("CountDocuments", mock.Anything, bson.M{"case.mediatorID": mediatorID}).Return(int64(10), nil)
	caseDB.On("CountDocuments", mock.Anything, bson.M{"case.mediatorID": mediatorID, "case.status": models.CaseStatusOpen}).Return(int64(4), nil)
	caseDB.On("CountDocuments", mock.Anything, bson.M{"case.mediatorID": mediatorID, "case.status": models.CaseStatusResolved}).Return(int64(6), nil)

	meetingDB := &mocksdb.MeetingDatabase{}
	meetingDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil)

	m := handlers.Mediator{CaseDB: caseDB, MeetingDB: meetingDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.MediatorStatsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]int64
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(10), got["totalCases"])
	assert.Equal(t, int64(4), got["openCases"])
	assert.Equal(t, int64(6), got["resolvedCases"])
	assert.Equal(t, int64(2), got["upcomingMeetings"])
}

func TestMediator_CreateMediatorHandlerMissingEmail(t *testing.T) {
	body := bytes.NewBufferString(`{"name": "No Email"}`)
	req, err := http.NewRequest("POST", "/api/v1/mediator", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	m := handlers.Mediator{DB: &mocksdb.MediatorDatabase{}}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.CreateMediatorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMediator_CreateMediatorHandlerStartsUnverified(t *testing.T) {
	body := bytes.NewBufferString(`{"name": "New Mediator", "email": "mediator@example.com", "isVerified": true}`)
	req, err := http.NewRequest("POST", "/api/v1/mediator", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	mediatorDB := &mocksdb.MediatorDatabase{}

	var inserted models.Mediator
	mediatorDB.On("InsertOne", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(models.Mediator)
	}).Return(nil, nil)

	m := handlers.Mediator{DB: mediatorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.CreateMediatorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.False(t, inserted.Details.IsVerified)
	assert.Equal(t, "mediator@example.com", inserted.Details.Email)
}
