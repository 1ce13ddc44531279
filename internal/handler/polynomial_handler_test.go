package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/internal/apperror"
	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePolynomialSvc struct {
	stored   []service.StorePolynomialRequest
	storeErr error

	polys   []model.Polynomial
	listErr error

	poly   *model.Polynomial
	getErr error

	dtos        []model.PolynomialDTO
	listUserErr error

	stats    *service.PolynomialStats
	statsErr error
}

func (s *fakePolynomialSvc) Store(_ context.Context, req service.StorePolynomialRequest) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored = append(s.stored, req)
	return nil
}

func (s *fakePolynomialSvc) GetByID(context.Context, uint64) (*model.Polynomial, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.poly, nil
}

func (s *fakePolynomialSvc) List(context.Context) ([]model.Polynomial, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.polys, nil
}

func (s *fakePolynomialSvc) ListByUser(context.Context, uint64) ([]model.PolynomialDTO, error) {
	if s.listUserErr != nil {
		return nil, s.listUserErr
	}
	return s.dtos, nil
}

func (s *fakePolynomialSvc) Stats(context.Context) (*service.PolynomialStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return s.stats, nil
}

type polyHandlerFixture struct {
	router *gin.Engine
	svc    *fakePolynomialSvc
	issuer *auth.TokenIssuer
}

func newPolyHandlerFixture(t *testing.T) *polyHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewTokenIssuer([]byte("handler-test-secret-0123456789"))
	require.NoError(t, err)

	f := &polyHandlerFixture{svc: &fakePolynomialSvc{}, issuer: issuer}
	h := NewPolynomialHandler(f.svc, issuer)

	f.router = gin.New()
	h.RegisterRoutes(&f.router.RouterGroup)
	return f
}

func (f *polyHandlerFixture) token(t *testing.T, scopes ...string) string {
	t.Helper()
	token, err := f.issuer.Issue("calc@x.com", 1, scopes)
	require.NoError(t, err)
	return token
}

func (f *polyHandlerFixture) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestStorePolynomial_OK(t *testing.T) {
	f := newPolyHandlerFixture(t)

	w := f.do(http.MethodPost, "/api/store-polynomial",
		`{"simplifiedExpression":"x^2 - 1","factoredExpression":"(x-1)(x+1)","roots":["1","-1"],"userId":"7"}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Polynomial stored successfully.", w.Body.String())
	require.Len(t, f.svc.stored, 1)
	require.NotNil(t, f.svc.stored[0].UserID)
	assert.Equal(t, service.FlexID(7), *f.svc.stored[0].UserID)
}

func TestStorePolynomial_MissingUserID(t *testing.T) {
	f := newPolyHandlerFixture(t)
	f.svc.storeErr = apperror.BadRequest("User ID is required.")

	w := f.do(http.MethodPost, "/api/store-polynomial",
		`{"simplifiedExpression":"x^2 - 1"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User ID is required.", w.Body.String())
}

func TestStorePolynomial_UnknownUser(t *testing.T) {
	f := newPolyHandlerFixture(t)
	f.svc.storeErr = apperror.NotFound("User not found.")

	w := f.do(http.MethodPost, "/api/store-polynomial",
		`{"simplifiedExpression":"x^2 - 1","userId":99}`, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found.", w.Body.String())
}

func TestStorePolynomial_MalformedBody(t *testing.T) {
	f := newPolyHandlerFixture(t)

	w := f.do(http.MethodPost, "/api/store-polynomial", `{"userId":`, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Error: "))
}

func TestListPolynomials_RequiresCalculatorScope(t *testing.T) {
	f := newPolyHandlerFixture(t)
	f.svc.polys = []model.Polynomial{{ID: 1, SimplifiedExpression: "x", Roots: model.RootList{"0"}, UserID: 1}}

	w := f.do(http.MethodGet, "/api/polynomials", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/polynomials", "", f.token(t, "USER"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/polynomials", "", f.token(t, "CALCULATOR"))
	assert.Equal(t, http.StatusOK, w.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "x", body[0]["simplifiedExpression"])
}

func TestPolynomialStats_Envelope(t *testing.T) {
	f := newPolyHandlerFixture(t)
	f.svc.stats = &service.PolynomialStats{
		TotalPolynomials: 3,
		DistinctUsers:    2,
		TotalRoots:       5,
		MeanRootValue:    "0.833333",
	}

	w := f.do(http.MethodGet, "/api/polynomials/stats", "", f.token(t, "CALCULATOR"))
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string                  `json:"status"`
		Data   service.PolynomialStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, int64(3), body.Data.TotalPolynomials)
	assert.Equal(t, "0.833333", body.Data.MeanRootValue)
}

func TestListByUser_EmptyIsNoContent(t *testing.T) {
	f := newPolyHandlerFixture(t)

	w := f.do(http.MethodGet, "/api/users/7/polynomials", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestListByUser_UnknownUser(t *testing.T) {
	f := newPolyHandlerFixture(t)
	f.svc.listUserErr = apperror.NotFound("User not found.")

	w := f.do(http.MethodGet, "/api/users/99/polynomials", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListByUser_FlattenedRoots(t *testing.T) {
	f := newPolyHandlerFixture(t)
	f.svc.dtos = []model.PolynomialDTO{{
		ID:                   1,
		SimplifiedExpression: "x^2 - 4",
		FactoredExpression:   "(x-2)(x+2)",
		Roots:                "[2, -2]",
	}}

	w := f.do(http.MethodGet, "/api/users/7/polynomials", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "[2, -2]", body[0]["roots"])
}
