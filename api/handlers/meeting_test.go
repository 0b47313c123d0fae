package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mediate-labs/mediation-api/api/handlers"
	mocksdb "github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func TestMeeting_CreateMeetingHandlerUnassignedCase(t *testing.T) {
	caseID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"caseID": "` + caseID.Hex() + `", "description": "intake call", "meetingDate": "2026-09-10T10:00:00Z"}`)
	req, err := http.NewRequest("POST", "/api/v1/meeting", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(&models.Case{
		ID:      caseID,
		Details: models.CaseDetails{Status: models.CaseStatusOpen},
	}, nil)

	meetingDB := &mocksdb.MeetingDatabase{}

	m := handlers.Meeting{DB: meetingDB, CaseDB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.CreateMeetingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	meetingDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestMeeting_CreateMeetingHandlerSuccess(t *testing.T) {
	caseID := primitive.NewObjectID()
	mediatorID := primitive.NewObjectID().Hex()
	body := bytes.NewBufferString(`{"caseID": "` + caseID.Hex() + `", "description": "first session", "meetingDate": "2026-09-10T10:00:00Z"}`)
	req, err := http.NewRequest("POST", "/api/v1/meeting", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(&models.Case{
		ID:      caseID,
		Details: models.CaseDetails{Status: models.CaseStatusOpen, MediatorID: mediatorID},
	}, nil)

	meetingDB := &mocksdb.MeetingDatabase{}

	var inserted models.Meeting
	meetingDB.On("InsertOne", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(models.Meeting)
	}).Return(nil, nil)

	m := handlers.Meeting{DB: meetingDB, CaseDB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.CreateMeetingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, caseID.Hex(), inserted.Details.CaseID)
	assert.Equal(t, mediatorID, inserted.Details.MediatorID)
	assert.Equal(t, models.MeetingStatusScheduled, inserted.Details.Status)

	wantDate, _ := time.Parse(time.RFC3339, "2026-09-10T10:00:00Z")
	assert.Equal(t, primitive.NewDateTimeFromTime(wantDate), inserted.Details.MeetingDate)
}

func TestMeeting_MeetingsByMediatorIDHandlerUpcomingFilter(t *testing.T) {
	mediatorID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/meetings/mediator/"+mediatorID+"?upcoming=true", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"mediator_id": mediatorID})
	req.Header.Set("Authorization", "Bearer abc123")

	meetingDB := &mocksdb.MeetingDatabase{}

	var capturedFilter bson.M
	meetingDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		capturedFilter = args.Get(1).(bson.M)
	}).Return([]models.Meeting{}, nil)

	m := handlers.Meeting{DB: meetingDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.MeetingsByMediatorIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, mediatorID, capturedFilter["meeting.mediatorID"])
	assert.Equal(t, models.MeetingStatusScheduled, capturedFilter["meeting.status"])
	assert.Contains(t, capturedFilter, "meeting.meetingDate")
}

func TestMeeting_MeetingsByUserIDHandlerNoCases(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/meetings/user/"+userID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("Find", mock.Anything, mock.Anything).Return([]models.Case{}, nil)

	meetingDB := &mocksdb.MeetingDatabase{}

	m := handlers.Meeting{DB: meetingDB, CaseDB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.MeetingsByUserIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
	meetingDB.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestMeeting_MeetingsByUserIDHandlerCollectsCaseMeetings(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	userCase := models.Case{ID: primitive.NewObjectID(), Details: models.CaseDetails{Party1ID: userID}}
	req, err := http.NewRequest("GET", "/api/v1/meetings/user/"+userID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID})
	req.Header.Set("Authorization", "Bearer abc123")

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("Find", mock.Anything, mock.Anything).Return([]models.Case{userCase}, nil)

	meetingDB := &mocksdb.MeetingDatabase{}

	var capturedFilter bson.M
	meetingDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		capturedFilter = args.Get(1).(bson.M)
	}).Return([]models.Meeting{
		{ID: primitive.NewObjectID(), Details: models.MeetingDetails{CaseID: userCase.ID.Hex()}},
	}, nil)

	m := handlers.Meeting{DB: meetingDB, CaseDB: caseDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.MeetingsByUserIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, bson.M{"$in": []string{userCase.ID.Hex()}}, capturedFilter["meeting.caseID"])

	var got []models.Meeting
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}
