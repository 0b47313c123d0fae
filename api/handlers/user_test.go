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
	"golang.org/x/crypto/bcrypt"

	"github.com/mediate-labs/mediation-api/api/handlers"
	mocksdb "github.com/mediate-labs/mediation-api/databases/mocks"
	"github.com/mediate-labs/mediation-api/models"
)

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body := bytes.NewBufferString(`{"name": "Asha Rao", "email": "asha@example.com", "password": "hunter2"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	userDB := &mocksdb.UserDatabase{}
	userDB.On("CountDocuments", mock.Anything, bson.M{"user.email": "asha@example.com"}).Return(int64(1), nil)

	u := handlers.User{DB: userDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	userDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestUser_UserCreateHandlerSuccess(t *testing.T) {
	body := bytes.NewBufferString(`{"name": "Asha Rao", "email": "asha@example.com", "password": "hunter2"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	userDB := &mocksdb.UserDatabase{}
	userDB.On("CountDocuments", mock.Anything, bson.M{"user.email": "asha@example.com"}).Return(int64(0), nil)

	var inserted models.User
	userDB.On("InsertOne", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(models.User)
	}).Return(nil, nil)

	u := handlers.User{DB: userDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	// stored password is a bcrypt hash of the submitted one
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(inserted.Details.Password), []byte("hunter2")))
	assert.NotContains(t, rr.Body.String(), "hunter2")

	var got models.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Empty(t, got.Details.Password)
	assert.Equal(t, "asha@example.com", got.Details.Email)
}

func TestUser_UserCreateHandlerMissingCredentials(t *testing.T) {
	body := bytes.NewBufferString(`{"name": "No Creds"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{DB: &mocksdb.UserDatabase{}}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUser_UserCheckEmailHandler(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "asha@example.com"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/check-user", body)
	if err != nil {
		t.Fatal(err)
	}

	userDB := &mocksdb.UserDatabase{}
	userDB.On("CountDocuments", mock.Anything, bson.M{"user.email": "asha@example.com"}).Return(int64(1), nil)

	u := handlers.User{DB: userDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCheckEmailHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"exists": true}`, rr.Body.String())
}

func TestUser_UpdateUserByIDHandlerPartialUpdate(t *testing.T) {
	userID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"phone": "9876543210", "city": "Pune"}`)
	req, err := http.NewRequest("PUT", "/api/v1/user/"+userID.Hex(), body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	userDB := &mocksdb.UserDatabase{}

	var capturedUpdate bson.M
	userDB.On("UpdateOne", mock.Anything, bson.M{"_id": userID}, mock.Anything).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2).(bson.M)
	}).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	userDB.On("FindOne", mock.Anything, bson.M{"_id": userID}).Return(&models.User{
		ID:      userID,
		Details: models.UserDetails{Phone: "9876543210", City: "Pune"},
	}, nil)

	u := handlers.User{DB: userDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateUserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := capturedUpdate["$set"].(bson.M)
	assert.Equal(t, "9876543210", set["user.phone"])
	assert.Equal(t, "Pune", set["user.city"])
	assert.NotContains(t, set, "user.name")
	assert.Contains(t, set, "user.updatedAt")
}

func TestUser_DeleteUserByIDHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/user/"+userID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	userDB := &mocksdb.UserDatabase{}
	userDB.On("DeleteOne", mock.Anything, bson.M{"_id": userID}).Return(nil)

	u := handlers.User{DB: userDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.DeleteUserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "deleted"}`, rr.Body.String())
}
