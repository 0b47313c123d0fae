package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediate-labs/mediation-api/api"
	"github.com/mediate-labs/mediation-api/config"
	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// ChatLog exported for testing purposes
type ChatLog struct {
	DB databases.ChatLogDatabase
}

// ChatLogsByCaseIDHandler returns the conversation logs captured for a case
func (c ChatLog) ChatLogsByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, bson.M{"chatLog.caseID": caseID},
		options.Find().SetSort(bson.M{"chatLog.timestamp": 1}))
	if err != nil {
		config.ErrorStatus("failed to get chat logs by case ID", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.ChatLog{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
