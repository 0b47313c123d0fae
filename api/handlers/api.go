package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mediate-labs/mediation-api/api"
	"github.com/mediate-labs/mediation-api/api/handlers/filing"
	"github.com/mediate-labs/mediation-api/api/scheduler"
	"github.com/mediate-labs/mediation-api/config"
	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	DB       databases.CollectionHelper
	Config   config.Config
	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	cs := Case{DB: databases.NewCaseDatabase(a.dbHelper)}
	med := Mediator{DB: databases.NewMediatorDatabase(a.dbHelper), CaseDB: databases.NewCaseDatabase(a.dbHelper), MeetingDB: databases.NewMeetingDatabase(a.dbHelper)}
	meet := Meeting{DB: databases.NewMeetingDatabase(a.dbHelper), CaseDB: databases.NewCaseDatabase(a.dbHelper)}
	cl := ChatLog{DB: databases.NewChatLogDatabase(a.dbHelper)}
	doc := CaseDocument{DB: databases.NewCaseDocumentDatabase(a.dbHelper), CaseDB: databases.NewCaseDatabase(a.dbHelper)}
	admin := Admin{UDB: databases.NewUserDatabase(a.dbHelper)}
	cf := CaseFiling{
		Filing: &filing.Service{
			UserDB:      databases.NewUserDatabase(a.dbHelper),
			PartyDB:     databases.NewPartyDatabase(a.dbHelper),
			CaseDB:      databases.NewCaseDatabase(a.dbHelper),
			ChatLogDB:   databases.NewChatLogDatabase(a.dbHelper),
			Client:      a.client,
			Ranker:      filing.Ranker{DB: databases.NewMediatorDatabase(a.dbHelper)},
			PartyDedupe: a.Config.PartyDedupe,
		},
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/metrics", metricsHandler)
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	r.Use(api.MetricsMiddleware)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(mux.MiddlewareFunc(api.TimeoutMiddleware(30 * time.Second)))

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/admin/token", http.HandlerFunc(admin.AdminTokenHandler)).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(u.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateUserByIDHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.DeleteUserByIDHandler))).Methods("DELETE")

	apiCreate.Handle("/case/file", api.Middleware(http.HandlerFunc(cf.FileCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(cs.CaseHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(cs.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/cases/user/{user_id}", api.Middleware(http.HandlerFunc(cs.CasesByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/cases/mediator/{mediator_id}", api.Middleware(http.HandlerFunc(cs.CasesByMediatorIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/status", api.Middleware(http.HandlerFunc(cs.UpdateCaseStatusHandler))).Methods("PATCH")
	apiCreate.Handle("/case/{case_id}/chatlogs", api.Middleware(http.HandlerFunc(cl.ChatLogsByCaseIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/documents", api.Middleware(http.HandlerFunc(doc.UploadCaseDocumentHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/documents", api.Middleware(http.HandlerFunc(doc.CaseDocumentsByCaseIDHandler))).Methods("GET")

	apiCreate.Handle("/mediator", api.Middleware(http.HandlerFunc(med.CreateMediatorHandler))).Methods("POST")
	apiCreate.Handle("/mediators", api.Middleware(http.HandlerFunc(med.MediatorHandler))).Methods("GET")
	apiCreate.Handle("/mediators/best", api.Middleware(http.HandlerFunc(med.BestMediatorHandler))).Methods("GET")
	apiCreate.Handle("/mediator/{mediator_id}", api.Middleware(http.HandlerFunc(med.MediatorByIDHandler))).Methods("GET")
	apiCreate.Handle("/mediator/{mediator_id}/verify", api.Middleware(http.HandlerFunc(med.VerifyMediatorHandler))).Methods("PATCH")
	apiCreate.Handle("/mediator/{mediator_id}/stats", api.Middleware(http.HandlerFunc(med.MediatorStatsHandler))).Methods("GET")

	apiCreate.Handle("/meeting", api.Middleware(http.HandlerFunc(meet.CreateMeetingHandler))).Methods("POST")
	apiCreate.Handle("/meetings/mediator/{mediator_id}", api.Middleware(http.HandlerFunc(meet.MeetingsByMediatorIDHandler))).Methods("GET")
	apiCreate.Handle("/meetings/user/{user_id}", api.Middleware(http.HandlerFunc(meet.MeetingsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/meeting/{meeting_id}", api.Middleware(http.HandlerFunc(meet.UpdateMeetingHandler))).Methods("PUT")
	apiCreate.Handle("/meeting/{meeting_id}", api.Middleware(http.HandlerFunc(meet.DeleteMeetingHandler))).Methods("DELETE")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("mediation-api has connected to the database")

	// background jobs: nightly stats rollup, meeting reminders
	sched := scheduler.NewScheduler(
		databases.NewMediatorDatabase(a.dbHelper),
		databases.NewCaseDatabase(a.dbHelper),
		databases.NewMeetingDatabase(a.dbHelper),
	)
	sched.Start()

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	mc := api.GetMetrics()
	b, err := json.Marshal(map[string]interface{}{
		"summary": mc.GetSummary(),
		"routes":  mc.GetRouteMetrics(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal metrics", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
