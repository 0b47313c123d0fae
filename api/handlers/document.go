package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mediate-labs/mediation-api/api"
	"github.com/mediate-labs/mediation-api/config"
	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

const maxDocumentUploadSize = 10 << 20 // 10 MB

// CaseDocument exported for testing purposes
type CaseDocument struct {
	DB     databases.CaseDocumentDatabase
	CaseDB databases.CaseDatabase
}

// UploadCaseDocumentHandler uploads a document for a case to cloudinary and
// stores its metadata. Expects multipart form fields "file" and "documentType".
func (d CaseDocument) UploadCaseDocumentHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxDocumentUploadSize); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("failed to read uploaded file", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()
	documentType := r.FormValue("documentType")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := d.CaseDB.FindOne(ctx, bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	// CLOUDINARY_URL env var carries the credentials
	cld, err := cloudinary.New()
	if err != nil {
		config.ErrorStatus("failed to init cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	publicID := "case-documents/" + caseID + "/" + uuid.New().String()
	uploadResp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
	})
	if err != nil {
		config.ErrorStatus("failed to upload document", http.StatusInternalServerError, w, err)
		return
	}

	doc := models.CaseDocument{
		ID: primitive.NewObjectID(),
		Details: models.CaseDocumentDetails{
			CaseID:       caseID,
			DocumentType: documentType,
			FileName:     header.Filename,
			StoredURL:    uploadResp.SecureURL,
			Status:       "Uploaded",
			UploadedAt:   primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	_, err = d.DB.InsertOne(ctx, doc)
	if err != nil {
		config.ErrorStatus("failed to store document metadata", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("case document uploaded",
		"caseID", caseID,
		"documentID", doc.ID.Hex(),
		"fileName", header.Filename)

	b, err := json.Marshal(doc)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CaseDocumentsByCaseIDHandler lists the documents attached to a case
func (d CaseDocument) CaseDocumentsByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.Find(ctx, bson.M{"caseDocument.caseID": caseID},
		options.Find().SetSort(bson.M{"caseDocument.uploadedAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get documents by case ID", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.CaseDocument{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
