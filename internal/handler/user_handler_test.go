package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccountSvc records calls and replays canned results.
type fakeAccountSvc struct {
	registered  []service.RegisterRequest
	registerErr error

	loginRes *service.LoginResult
	loginErr error

	verifyErr error
	forgotErr error

	account *model.Account
	getErr  error

	updateErr error
	deleteErr error
}

func (s *fakeAccountSvc) Register(_ context.Context, req service.RegisterRequest) error {
	if s.registerErr != nil {
		return s.registerErr
	}
	s.registered = append(s.registered, req)
	return nil
}

func (s *fakeAccountSvc) Login(context.Context, service.LoginRequest) (*service.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginRes, nil
}

func (s *fakeAccountSvc) VerifyEmail(context.Context, string) error { return s.verifyErr }

func (s *fakeAccountSvc) ForgotPassword(context.Context, string) error { return s.forgotErr }

func (s *fakeAccountSvc) GetByID(context.Context, uint64) (*model.Account, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.account, nil
}

func (s *fakeAccountSvc) List(context.Context) ([]model.Account, error) {
	if s.account == nil {
		return nil, nil
	}
	return []model.Account{*s.account}, nil
}

func (s *fakeAccountSvc) Update(context.Context, uint64, service.UpdateRequest) error {
	return s.updateErr
}

func (s *fakeAccountSvc) Delete(context.Context, uint64) error { return s.deleteErr }

type userHandlerFixture struct {
	router     *gin.Engine
	users      *fakeAccountSvc
	calculator *fakeAccountSvc
	admin      *fakeAccountSvc
	viaUsers   *fakeAccountSvc
}

func newUserHandlerFixture() *userHandlerFixture {
	gin.SetMode(gin.TestMode)

	f := &userHandlerFixture{
		users:      &fakeAccountSvc{},
		calculator: &fakeAccountSvc{},
		admin:      &fakeAccountSvc{},
		viaUsers:   &fakeAccountSvc{},
	}
	h := NewUserHandler(f.users, UserRegistrars{
		CalculatorViaUsers: f.viaUsers,
		Admin:              f.admin,
		Calculator:         f.calculator,
	})

	f.router = gin.New()
	h.RegisterRoutes(&f.router.RouterGroup)
	return f
}

func (f *userHandlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestUserRegister_Created(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPost, "/api/users/register",
		`{"username":"alice","email":"alice@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Utilisateur enregistré avec succès. Veuillez vérifier votre e-mail.", w.Body.String())
	require.Len(t, f.users.registered, 1)
	assert.Empty(t, f.viaUsers.registered)
}

func TestUserRegister_IsCalculatorRoutesToCalculatorKind(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPost, "/api/users/register",
		`{"username":"calc","email":"calc@x.com","password":"pw","isCalculator":true}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Calculator enregistré avec succès. Veuillez vérifier votre e-mail.", w.Body.String())
	assert.Empty(t, f.users.registered)
	require.Len(t, f.viaUsers.registered, 1)
}

func TestUserRegister_Conflict(t *testing.T) {
	f := newUserHandlerFixture()
	f.users.registerErr = apperror.Conflict(service.MsgUsernameTaken)

	w := f.do(http.MethodPost, "/api/users/register",
		`{"username":"alice","email":"alice@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.MsgUsernameTaken, w.Body.String())
}

func TestUserRegister_MissingFields(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPost, "/api/users/register", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserLogin_ReturnsTokenIdAndScope(t *testing.T) {
	f := newUserHandlerFixture()
	f.users.loginRes = &service.LoginResult{
		Token:  "signed-token",
		UserID: 42,
		Scopes: []string{"ADMIN", "USER"},
	}

	w := f.do(http.MethodPost, "/api/users/login",
		`{"email":"alice@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "signed-token", body["token"])
	assert.Equal(t, "42", body["userId"])
	assert.Equal(t, "ADMIN,USER", body["scope"])
}

func TestUserLogin_BadCredentials(t *testing.T) {
	f := newUserHandlerFixture()
	f.users.loginErr = apperror.Unauthorized(service.MsgBadCredentials)

	w := f.do(http.MethodPost, "/api/users/login",
		`{"email":"alice@x.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, service.MsgBadCredentials, body["message"])
}

func TestUserLogin_Unverified(t *testing.T) {
	f := newUserHandlerFixture()
	f.users.loginErr = apperror.Unverified(service.MsgUnverified)

	w := f.do(http.MethodPost, "/api/users/login",
		`{"email":"alice@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, service.MsgUnverified, body["message"])
}

func TestUserVerifyEmail(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodGet, "/api/users/verify?email=alice@x.com", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "E-mail vérifié avec succès.", w.Body.String())

	w = f.do(http.MethodGet, "/api/users/verify", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserForgotPassword(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPost, "/api/users/forgot-password?email=alice@x.com", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Un e-mail avec votre nouveau mot de passe a été envoyé.", w.Body.String())
}

func TestUserForgotPassword_UnknownEmail(t *testing.T) {
	f := newUserHandlerFixture()
	f.users.forgotErr = apperror.NotFound("Utilisateur non trouvé.")

	w := f.do(http.MethodPost, "/api/users/forgot-password?email=ghost@x.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Utilisateur non trouvé.", w.Body.String())
}

func TestUserRegisterAdminPassthrough(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPost, "/api/users/register-admin",
		`{"username":"root2","email":"root2@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Admin enregistré avec succès.", w.Body.String())
	require.Len(t, f.admin.registered, 1)
}

func TestUserRegisterCalculatorPassthrough(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPost, "/api/users/register-calculator",
		`{"username":"calc2","email":"calc2@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Calculator enregistré avec succès.", w.Body.String())
	require.Len(t, f.calculator.registered, 1)
}

func TestUserGetByID(t *testing.T) {
	f := newUserHandlerFixture()
	f.users.account = &model.Account{ID: 5, Username: "alice", Email: "alice@x.com"}

	w := f.do(http.MethodGet, "/api/users/5", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "password")
}

func TestUserGetByID_BadIDIsNotFound(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodGet, "/api/users/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserUpdate(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodPut, "/api/users/5", `{"telephone":"0601020304"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Profil mis à jour avec succès.", w.Body.String())
}

func TestUserDelete(t *testing.T) {
	f := newUserHandlerFixture()

	w := f.do(http.MethodDelete, "/api/users/5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Utilisateur supprimé avec succès.", w.Body.String())
}
