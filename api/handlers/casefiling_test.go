package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mediate-labs/mediation-api/api/handlers"
	"github.com/mediate-labs/mediation-api/api/handlers/filing"
	mocksdb "github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func newFilingHandler() (handlers.CaseFiling, *mocksdb.UserDatabase, *mocksdb.PartyDatabase, *mocksdb.CaseDatabase, *mocksdb.ChatLogDatabase, *mocksdb.MediatorDatabase) {
	userDB := &mocksdb.UserDatabase{}
	partyDB := &mocksdb.PartyDatabase{}
	caseDB := &mocksdb.CaseDatabase{}
	chatLogDB := &mocksdb.ChatLogDatabase{}
	mediatorDB := &mocksdb.MediatorDatabase{}
	client := &mocksdb.ClientHelper{}
	client.On("WithTransaction", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, fn func(sc context.Context) (interface{}, error)) (interface{}, error) {
			return fn(ctx)
		})

	h := handlers.CaseFiling{
		Filing: &filing.Service{
			UserDB:    userDB,
			PartyDB:   partyDB,
			CaseDB:    caseDB,
			ChatLogDB: chatLogDB,
			Client:    client,
			Ranker:    filing.Ranker{DB: mediatorDB},
		},
	}
	return h, userDB, partyDB, caseDB, chatLogDB, mediatorDB
}

func TestCaseFiling_FileCaseHandlerBadBody(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/case/file", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	h, _, _, _, _, _ := newFilingHandler()

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.FileCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCaseFiling_FileCaseHandlerFilerNotFound(t *testing.T) {
	filerID := primitive.NewObjectID()
	body, _ := json.Marshal(filing.Request{
		FilerID:           filerID.Hex(),
		CounterPartyEmail: "vijay@example.com",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/file", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	h, userDB, partyDB, caseDB, _, _ := newFilingHandler()
	userDB.On("FindOne", mock.Anything, bson.M{"_id": filerID}).Return(nil, mongo.ErrNoDocuments)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.FileCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	partyDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	caseDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCaseFiling_FileCaseHandlerSuccess(t *testing.T) {
	filer := &models.User{
		ID:      primitive.NewObjectID(),
		Details: models.UserDetails{Name: "Asha Rao", Email: "asha@example.com"},
	}
	body, _ := json.Marshal(filing.Request{
		FilerID:           filer.ID.Hex(),
		CounterPartyEmail: "stranger@example.com",
		Description:       "Unpaid invoice",
		Category:          "Commercial",
		ConversationLog:   "bot: describe your dispute",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/file", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	h, userDB, partyDB, caseDB, chatLogDB, mediatorDB := newFilingHandler()
	userDB.On("FindOne", mock.Anything, bson.M{"_id": filer.ID}).Return(filer, nil)
	userDB.On("FindOne", mock.Anything, bson.M{"user.email": "stranger@example.com"}).Return(nil, mongo.ErrNoDocuments)
	partyDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	mediatorDB.On("Find", mock.Anything, mock.Anything).Return([]models.Mediator{}, nil)
	caseDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	chatLogDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.FileCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "success", got["status"])
	assert.NotEmpty(t, got["caseId"])
}
