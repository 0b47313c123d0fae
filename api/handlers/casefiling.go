package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/mediate-labs/mediation-api/api"
	"github.com/mediate-labs/mediation-api/api/handlers/filing"
	"github.com/mediate-labs/mediation-api/config"
	"github.com/mediate-labs/mediation-api/models"
)

// CaseFiling exported for testing purposes
type CaseFiling struct {
	Filing *filing.Service
}

type fileCaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	CaseID  string `json:"caseId"`
}

// FileCaseHandler files a new case: resolves the counter-party, assigns the
// best available mediator and stores the case with its chat log
func (h CaseFiling) FileCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req filing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	newCase, err := h.Filing.FileNewCase(ctx, req)
	if err != nil {
		if errors.Is(err, filing.ErrFilerNotFound) {
			config.ErrorStatus("filer not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to file case", http.StatusInternalServerError, w, err)
		return
	}

	go sendCaseFiledEmail(req.CounterPartyEmail, newCase)
	notifyCaseParties(newCase, "case_filed")

	b, err := json.Marshal(fileCaseResponse{
		Status:  "success",
		Message: "case filed",
		CaseID:  newCase.ID.Hex(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// sendCaseFiledEmail notifies the counter-party that a case names them.
// Best-effort, failures are logged and dropped.
func sendCaseFiledEmail(toEmail string, newCase *models.Case) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" || toEmail == "" {
		return
	}

	from := mail.NewEmail("Mediation Platform", os.Getenv("SENDGRID_FROM_EMAIL"))
	to := mail.NewEmail("", toEmail)
	subject := "A mediation case has been filed naming you as a party"
	plainText := "A " + newCase.Details.CaseType + " mediation case has been filed naming you as a party. " +
		"Case reference: " + newCase.ID.Hex() + ". Please register or sign in to respond."
	message := mail.NewSingleEmail(from, subject, to, plainText, "")

	client := sendgrid.NewSendClient(apiKey)
	resp, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send case filed email",
			"caseID", newCase.ID.Hex(),
			"error", err)
		return
	}
	zap.S().Debugw("case filed email sent",
		"caseID", newCase.ID.Hex(),
		"statusCode", resp.StatusCode)
}

// notifyCaseParties pushes a case event to every connected participant
func notifyCaseParties(c *models.Case, event string) {
	data := map[string]interface{}{
		"caseId":   c.ID.Hex(),
		"caseType": c.Details.CaseType,
		"status":   c.Details.Status,
	}
	sendNotificationToUser(c.Details.Party1ID, event, data)
	if c.Details.Party2ID != "" {
		sendNotificationToUser(c.Details.Party2ID, event, data)
	}
	if c.Details.MediatorID != "" {
		sendNotificationToUser(c.Details.MediatorID, event, data)
	}
}
