package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/api"
	"github.com/mediate-labs/mediation-api/config"
	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// Meeting exported for testing purposes
type Meeting struct {
	DB     databases.MeetingDatabase
	CaseDB databases.CaseDatabase
}

type createMeetingRequest struct {
	CaseID      string `json:"caseID"`
	Description string `json:"description"`
	MeetingDate string `json:"meetingDate"`
}

// CreateMeetingHandler schedules a meeting for a case. The mediator is taken
// from the case itself.
func (m Meeting) CreateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	cID, err := primitive.ObjectIDFromHex(req.CaseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	meetingDate, err := time.Parse(time.RFC3339, req.MeetingDate)
	if err != nil {
		config.ErrorStatus("failed to parse meeting date", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseResp, err := m.CaseDB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	if caseResp.Details.MediatorID == "" {
		config.ErrorStatus("case has no mediator assigned", http.StatusBadRequest, w, fmt.Errorf("case %s is unassigned", req.CaseID))
		return
	}

	meeting := models.Meeting{
		ID: primitive.NewObjectID(),
		Details: models.MeetingDetails{
			CaseID:      req.CaseID,
			MediatorID:  caseResp.Details.MediatorID,
			Description: req.Description,
			Status:      models.MeetingStatusScheduled,
			MeetingDate: primitive.NewDateTimeFromTime(meetingDate),
			CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	_, err = m.DB.InsertOne(ctx, meeting)
	if err != nil {
		config.ErrorStatus("failed to create meeting", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(meeting)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MeetingsByMediatorIDHandler returns a mediator's meetings. Pass
// ?upcoming=true to only get scheduled meetings from now on.
func (m Meeting) MeetingsByMediatorIDHandler(w http.ResponseWriter, r *http.Request) {
	mediatorID := mux.Vars(r)["mediator_id"]

	filter := bson.M{"meeting.mediatorID": mediatorID}
	if r.URL.Query().Get("upcoming") == "true" {
		filter["meeting.status"] = models.MeetingStatusScheduled
		filter["meeting.meetingDate"] = bson.M{"$gte": primitive.NewDateTimeFromTime(time.Now())}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := m.DB.Find(ctx, filter, options.Find().SetSort(bson.M{"meeting.meetingDate": 1}))
	if err != nil {
		config.ErrorStatus("failed to get meetings by mediator ID", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Meeting{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MeetingsByUserIDHandler returns the meetings for all cases a user is a
// party to, either as filer or counter-party
func (m Meeting) MeetingsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := m.CaseDB.Find(ctx, bson.M{
		"$or": []bson.M{
			{"case.party1ID": userID},
			{"case.party2ID": userID},
		},
	})
	if err != nil {
		config.ErrorStatus("failed to get cases by user ID", http.StatusNotFound, w, err)
		return
	}

	caseIDs := make([]string, 0, len(cases))
	for _, c := range cases {
		caseIDs = append(caseIDs, c.ID.Hex())
	}

	dbResp := []models.Meeting{}
	if len(caseIDs) > 0 {
		dbResp, err = m.DB.Find(ctx, bson.M{"meeting.caseID": bson.M{"$in": caseIDs}},
			options.Find().SetSort(bson.M{"meeting.meetingDate": 1}))
		if err != nil {
			config.ErrorStatus("failed to get meetings by user ID", http.StatusNotFound, w, err)
			return
		}
	}

	if len(dbResp) == 0 {
		dbResp = []models.Meeting{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateMeetingRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
	MeetingDate *string `json:"meetingDate"`
}

// UpdateMeetingHandler updates a meeting's description, status or date
func (m Meeting) UpdateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID := mux.Vars(r)["meeting_id"]

	mID, err := primitive.ObjectIDFromHex(meetingID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	if req.Description != nil {
		set["meeting.description"] = *req.Description
	}
	if req.Status != nil {
		set["meeting.status"] = *req.Status
	}
	if req.MeetingDate != nil {
		meetingDate, err := time.Parse(time.RFC3339, *req.MeetingDate)
		if err != nil {
			config.ErrorStatus("failed to parse meeting date", http.StatusBadRequest, w, err)
			return
		}
		set["meeting.meetingDate"] = primitive.NewDateTimeFromTime(meetingDate)
	}
	if len(set) == 0 {
		config.ErrorStatus("no updatable fields provided", http.StatusBadRequest, w, fmt.Errorf("empty update"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := m.DB.UpdateOne(ctx, bson.M{"_id": mID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update meeting", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("meeting not found", http.StatusNotFound, w, fmt.Errorf("no meeting matched %s", meetingID))
		return
	}

	dbResp, err := m.DB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to get meeting by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteMeetingHandler deletes a meeting
func (m Meeting) DeleteMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID := mux.Vars(r)["meeting_id"]

	mID, err := primitive.ObjectIDFromHex(meetingID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.DB.DeleteOne(ctx, bson.M{"_id": mID}); err != nil {
		config.ErrorStatus("failed to delete meeting", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
