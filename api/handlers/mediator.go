package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mediate-labs/mediation-api/api"
	"github.com/mediate-labs/mediation-api/api/handlers/filing"
	"github.com/mediate-labs/mediation-api/config"
	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// Mediator exported for testing purposes
type Mediator struct {
	DB        databases.MediatorDatabase
	CaseDB    databases.CaseDatabase
	MeetingDB databases.MeetingDatabase
}

// CreateMediatorHandler creates a mediator
func (m Mediator) CreateMediatorHandler(w http.ResponseWriter, r *http.Request) {
	var mediator models.Mediator
	if err := json.NewDecoder(r.Body).Decode(&mediator.Details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if mediator.Details.Email == "" {
		config.ErrorStatus("email is required", http.StatusBadRequest, w, fmt.Errorf("empty email"))
		return
	}

	mediator.ID = primitive.NewObjectID()
	mediator.Details.IsVerified = false
	mediator.Details.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := m.DB.InsertOne(ctx, mediator)
	if err != nil {
		config.ErrorStatus("failed to create mediator", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(mediator)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MediatorHandler returns all mediators
func (m Mediator) MediatorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := m.DB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to get mediators", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Mediator{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MediatorByIDHandler returns a mediator by ID
func (m Mediator) MediatorByIDHandler(w http.ResponseWriter, r *http.Request) {
	mediatorID := mux.Vars(r)["mediator_id"]

	zap.S().Debugf("mediator_id: %v", mediatorID)

	mID, err := primitive.ObjectIDFromHex(mediatorID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := m.DB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to get mediator by ID", http.StatusNotFound, w, err)
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

type verifyMediatorRequest struct {
	Verified bool `json:"verified"`
}

// VerifyMediatorHandler sets the verification flag on a mediator. Only
// verified mediators are eligible for case assignment.
func (m Mediator) VerifyMediatorHandler(w http.ResponseWriter, r *http.Request) {
	mediatorID := mux.Vars(r)["mediator_id"]

	mID, err := primitive.ObjectIDFromHex(mediatorID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req verifyMediatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := m.DB.UpdateOne(ctx, bson.M{"_id": mID}, bson.M{
		"$set": bson.M{
			"mediator.isVerified": req.Verified,
			"mediator.updatedAt":  primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to update mediator", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("mediator not found", http.StatusNotFound, w, fmt.Errorf("no mediator matched %s", mediatorID))
		return
	}

	dbResp, err := m.DB.FindOne(ctx, bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to get mediator by ID", http.StatusNotFound, w, err)
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

type mediatorStatsResponse struct {
	TotalCases       int64 `json:"totalCases"`
	OpenCases        int64 `json:"openCases"`
	ResolvedCases    int64 `json:"resolvedCases"`
	UpcomingMeetings int64 `json:"upcomingMeetings"`
}

// MediatorStatsHandler returns dashboard counts for a mediator
func (m Mediator) MediatorStatsHandler(w http.ResponseWriter, r *http.Request) {
	mediatorID := mux.Vars(r)["mediator_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	total, err := m.CaseDB.CountDocuments(ctx, bson.M{"case.mediatorID": mediatorID})
	if err != nil {
		config.ErrorStatus("failed to count cases", http.StatusInternalServerError, w, err)
		return
	}
	open, err := m.CaseDB.CountDocuments(ctx, bson.M{"case.mediatorID": mediatorID, "case.status": models.CaseStatusOpen})
	if err != nil {
		config.ErrorStatus("failed to count open cases", http.StatusInternalServerError, w, err)
		return
	}
	resolved, err := m.CaseDB.CountDocuments(ctx, bson.M{"case.mediatorID": mediatorID, "case.status": models.CaseStatusResolved})
	if err != nil {
		config.ErrorStatus("failed to count resolved cases", http.StatusInternalServerError, w, err)
		return
	}
	upcoming, err := m.MeetingDB.CountDocuments(ctx, bson.M{
		"meeting.mediatorID":  mediatorID,
		"meeting.status":      models.MeetingStatusScheduled,
		"meeting.meetingDate": bson.M{"$gte": primitive.NewDateTimeFromTime(time.Now())},
	})
	if err != nil {
		config.ErrorStatus("failed to count upcoming meetings", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(mediatorStatsResponse{
		TotalCases:       total,
		OpenCases:        open,
		ResolvedCases:    resolved,
		UpcomingMeetings: upcoming,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// BestMediatorHandler exposes the ranking engine read-only. Selection holds no
// lock; the returned mediator is not reserved.
func (m Mediator) BestMediatorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	best, err := filing.Ranker{DB: m.DB}.SelectBest(ctx)
	if err != nil {
		config.ErrorStatus("failed to rank mediators", http.StatusInternalServerError, w, err)
		return
	}
	if best == nil {
		config.ErrorStatus("no eligible mediator", http.StatusNotFound, w, fmt.Errorf("no verified mediator with professional details"))
		return
	}

	b, err := json.Marshal(best)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
