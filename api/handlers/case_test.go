package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/api/handlers"
	"github.com/mediate-labs/mediation-api/databases"
	mocksdb "github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func TestCase_CaseByIDHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/case/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"case_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "cases").Return(conn)

	caseDatabase := databases.NewCaseDatabase(db)
	c := handlers.Case{
		DB: caseDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CaseByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := `{"response": "failed to get objectID from Hex, the provided hex string is not a valid ObjectID"}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestCase_CaseByIDHandlerFailedToFindOne(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/case/5fc51f58c72ff10004dca382", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "cases").Return(conn)

	caseDatabase := databases.NewCaseDatabase(db)
	c := handlers.Case{
		DB: caseDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CaseByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
	}

	expected := `{"response": "failed to get case by ID, mocked-error"}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestCase_CaseHandlerDefaultPageReadsFirstPage(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/cases", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	cursorHelper = &mocksdb.CursorHelper{}

	cursorHelper.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Case)
		(*arg) = []models.Case{{ID: primitive.NewObjectID()}}
	})

	var capturedOpts *options.FindOptions
	conn.(*mocksdb.CollectionHelper).
		On("Find", mock.Anything, mock.Anything, mock.AnythingOfType("*options.FindOptions")).
		Return(cursorHelper, nil).
		Run(func(args mock.Arguments) {
			capturedOpts = args.Get(2).(*options.FindOptions)
		})
	db.(*mocksdb.DatabaseHelper).On("Collection", "cases").Return(conn)

	caseDatabase := databases.NewCaseDatabase(db)
	c := handlers.Case{
		DB: caseDatabase,
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, capturedOpts)
	assert.Equal(t, int64(10), *capturedOpts.Limit)
	assert.Equal(t, int64(0), *capturedOpts.Skip)
}

func TestCase_CaseHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/cases?limit=5&page=0", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindPaginated", mock.Anything, mock.Anything, 5, 0).Return([]models.Case{
		{ID: primitive.NewObjectID(), Details: models.CaseDetails{Status: models.CaseStatusOpen}},
	}, nil)

	c := handlers.Case{DB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestCase_UpdateCaseStatusHandlerResolvedStampsResolvedAt(t *testing.T) {
	caseID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "Resolved"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/case/"+caseID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}

	var capturedUpdate bson.M
	caseDB.On("UpdateOne", mock.Anything, bson.M{"_id": caseID}, mock.Anything).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2).(bson.M)
	}).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(&models.Case{
		ID:      caseID,
		Details: models.CaseDetails{Status: models.CaseStatusResolved},
	}, nil)

	c := handlers.Case{DB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCaseStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := capturedUpdate["$set"].(bson.M)
	assert.Equal(t, models.CaseStatusResolved, set["case.status"])
	assert.Contains(t, set, "case.resolvedAt")
	assert.NotContains(t, capturedUpdate, "$unset")
}

func TestCase_UpdateCaseStatusHandlerReopenClearsResolvedAt(t *testing.T) {
	caseID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "Open"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/case/"+caseID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}

	var capturedUpdate bson.M
	caseDB.On("UpdateOne", mock.Anything, bson.M{"_id": caseID}, mock.Anything).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2).(bson.M)
	}).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(&models.Case{
		ID:      caseID,
		Details: models.CaseDetails{Status: models.CaseStatusOpen},
	}, nil)

	c := handlers.Case{DB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCaseStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := capturedUpdate["$set"].(bson.M)
	assert.Equal(t, models.CaseStatusOpen, set["case.status"])
	assert.NotContains(t, set, "case.resolvedAt")
	assert.Contains(t, capturedUpdate, "$unset")
}

func TestCase_UpdateCaseStatusHandlerNotFound(t *testing.T) {
	caseID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "Resolved"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/case/"+caseID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("UpdateOne", mock.Anything, bson.M{"_id": caseID}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	c := handlers.Case{DB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCaseStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_CasesByUserIDHandlerEmpty(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/cases/user/"+userID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("Find", mock.Anything, bson.M{"case.party1ID": userID}, mock.Anything).Return(nil, nil)

	c := handlers.Case{DB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasesByUserIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
