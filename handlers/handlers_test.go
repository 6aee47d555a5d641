package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	draftRepo "estuary/database/repository/draft"
	"estuary/handlers"
	"estuary/models"
	"estuary/routes"
	"estuary/services/estuary"
	"estuary/services/notify"
	"estuary/services/storage"
	"estuary/services/wizard"
	"estuary/utils"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]utils.AuthSession
}

func (m *memorySessions) Get(_ context.Context, id string) (*utils.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, redis.Nil
	}
	return &s, nil
}

func (m *memorySessions) Save(_ context.Context, id string, s utils.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// fakeAPI stands in for the Estuary REST API.
type fakeAPI struct {
	createErr error
	created   []models.ServiceRequest
	tokens    []string
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*estuary.LoginResult, error) {
	if password != "secret" {
		return nil, &estuary.APIError{Status: http.StatusUnauthorized, Message: "bad credentials"}
	}
	return &estuary.LoginResult{AccessToken: "upstream-token", User: models.CurrentUser{ID: "u-1", Email: email, FirstName: "Ada"}}, nil
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*models.CurrentUser, error) {
	f.tokens = append(f.tokens, estuary.TokenFromContext(ctx))
	return &models.CurrentUser{ID: "u-1", Email: "ada@example.com", FirstName: "Ada"}, nil
}

func (f *fakeAPI) PractitionerProfile(ctx context.Context) (*models.PractitionerSummary, error) {
	if estuary.TokenFromContext(ctx) != "upstream-token" {
		return nil, estuary.ErrUnauthorized
	}
	return &models.PractitionerSummary{ID: "prac-1", DisplayName: "Ada"}, nil
}

func (f *fakeAPI) GetService(context.Context, string) (*models.ServiceRecord, error) {
	return nil, &estuary.APIError{Status: http.StatusNotFound, Message: "not found"}
}

func (f *fakeAPI) CreateService(_ context.Context, req models.ServiceRequest) (*models.ServiceRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &models.ServiceRecord{ID: "svc-1", Name: req.Name}, nil
}

func (f *fakeAPI) UpdateService(_ context.Context, id string, req models.ServiceRequest) (*models.ServiceRecord, error) {
	return &models.ServiceRecord{ID: id, Name: req.Name}, nil
}

func (f *fakeAPI) ListQuestions(context.Context, string) ([]models.ServiceQuestion, error) {
	return nil, nil
}

func (f *fakeAPI) CreateQuestion(_ context.Context, serviceID string, in models.QuestionInput) (*models.ServiceQuestion, error) {
	return &models.ServiceQuestion{ID: "q-1", ServiceID: serviceID, QuestionText: in.QuestionText, QuestionType: in.QuestionType}, nil
}

func (f *fakeAPI) DeleteQuestion(context.Context, string, string) error { return nil }

type fakeCatalog struct{}

func (fakeCatalog) ServiceTypes(context.Context) ([]models.ServiceTypeInfo, error) { return nil, nil }
func (fakeCatalog) Categories(context.Context) ([]models.Category, error)          { return nil, nil }
func (fakeCatalog) Modalities(context.Context) ([]models.Modality, error)          { return nil, nil }
func (fakeCatalog) PractitionerCategories(context.Context, string) ([]models.PractitionerCategory, error) {
	return nil, nil
}
func (fakeCatalog) Schedules(context.Context, string) ([]models.Schedule, error) { return nil, nil }
func (fakeCatalog) SessionServices(context.Context, string) ([]models.ServiceSummary, error) {
	return []models.ServiceSummary{
		{ID: "s30", Name: "Intro", ServiceType: models.ServiceTypeSession, Price: 40, DurationMinutes: 30},
		{ID: "s45", Name: "Deep", ServiceType: models.ServiceTypeSession, Price: 50, DurationMinutes: 45},
		{ID: "s60", Name: "Full", ServiceType: models.ServiceTypeSession, Price: 60, DurationMinutes: 60},
	}, nil
}
func (fakeCatalog) SearchPractitioners(context.Context, string) ([]models.PractitionerSummary, error) {
	return []models.PractitionerSummary{{ID: "prac-1", DisplayName: "Ada"}, {ID: "prac-2", DisplayName: "Bo"}}, nil
}
func (fakeCatalog) InvalidateServices(context.Context, string) error { return nil }

type nopStorage struct{ calls int }

func (s *nopStorage) Upload(_ context.Context, f *storage.File, contentType string, _ models.UploadKind) (*models.UploadedFile, error) {
	s.calls++
	return &models.UploadedFile{MediaID: "m-1", URL: "https://cdn.test/" + f.Name, ContentType: contentType, Size: f.Size}, nil
}

type testServer struct {
	router   *gin.Engine
	api      *fakeAPI
	store    *nopStorage
	sessions *memorySessions
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		api:      &fakeAPI{},
		store:    &nopStorage{},
		sessions: &memorySessions{sessions: map[string]utils.AuthSession{}},
	}
	logger := zap.NewNop()
	uploader := storage.NewUploader(ts.store, storage.DefaultLimits(), logger)
	svc := wizard.NewService(draftRepo.NewMemoryDraftRepo(), ts.api, fakeCatalog{}, uploader,
		notify.NewRequestNotifier(logger), logger, wizard.Options{})

	hb := &handlers.HandlerBundle{
		Sessions:       ts.sessions,
		Auth:           handlers.NewAuthHandler(ts.api, ts.sessions, time.Hour),
		Catalog:        handlers.NewCatalogHandler(fakeCatalog{}),
		Wizard:         handlers.NewWizardHandler(svc),
		Questions:      handlers.NewQuestionsHandler(ts.api),
		AllowedOrigins: []string{"*"},
	}
	ts.router = gin.New()
	routes.RegisterRoutes(ts.router, hb)
	return ts
}

// tokenFor signs in a practitioner directly against the session store.
func (ts *testServer) tokenFor(t *testing.T, practitionerID string) string {
	t.Helper()
	sid := "sid-" + practitionerID
	require.NoError(t, ts.sessions.Save(context.Background(), sid, utils.AuthSession{PractitionerID: practitionerID, APIToken: "tok-" + practitionerID}))
	token, err := utils.GenerateToken(practitionerID, sid, practitionerID+"@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

type sessionBody struct {
	Session models.WizardSession `json:"session"`
	Steps   wizard.StepsView     `json:"steps"`
	Pricing wizard.PricingView   `json:"pricing"`
	Selects map[string]string    `json:"selects"`
	Errors  map[string]string    `json:"errors"`
	Toasts  []models.Toast       `json:"toasts"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) start(t *testing.T, token string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/wizard", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sessionBody](t, w).Session.ID
}

func TestWizardRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/wizard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/wizard", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpiredAuthSessionRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	require.NoError(t, ts.sessions.Delete(context.Background(), "sid-prac-1"))

	w := ts.do(t, http.MethodGet, "/api/wizard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPackageFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	id := ts.start(t, token)
	base := "/api/wizard/" + id

	w := ts.do(t, http.MethodPut, base+"/type", token, gin.H{"serviceType": "package"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, decode[sessionBody](t, w).Steps.TotalPhases)

	for _, sid := range []string{"s30", "s45", "s60"} {
		w = ts.do(t, http.MethodPost, base+"/package/sessions", token, gin.H{"serviceId": sid})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = ts.do(t, http.MethodPost, base+"/package/sessions", token, gin.H{"serviceId": "s30"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPut, base+"/package/discount", token, gin.H{"discount": 20})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[sessionBody](t, w)
	require.NotNil(t, body.Pricing.Package)
	assert.Equal(t, 120.0, body.Pricing.Package.FinalPrice)
	assert.Equal(t, 135, body.Session.Draft.DurationMinutes)

	w = ts.do(t, http.MethodPatch, base+"/fields", token, gin.H{"price": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, base+"/fields", token, gin.H{"name": "Reset", "description": "Three sessions", "scheduleId": "none"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[sessionBody](t, w)
	assert.Nil(t, patched.Session.Draft.ScheduleID)
	assert.Equal(t, "none", patched.Selects["scheduleId"])

	w = ts.do(t, http.MethodGet, base+"/preview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	preview := decode[models.ServiceRequest](t, w)
	assert.Equal(t, "120.00", preview.Price)
	assert.Len(t, preview.ChildServiceConfigs, 3)

	w = ts.do(t, http.MethodPost, base+"/submit", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	submitted := decode[sessionBody](t, w)
	assert.Equal(t, models.WizardSubmitted, submitted.Session.Status)
	require.NotEmpty(t, submitted.Toasts)
	assert.Equal(t, models.ToastSuccess, submitted.Toasts[0].Level)
	assert.Len(t, ts.api.created, 1)

	w = ts.do(t, http.MethodPost, base+"/submit", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdvanceFailureReturnsSessionAndErrors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	id := ts.start(t, token)

	w := ts.do(t, http.MethodPut, "/api/wizard/"+id+"/type", token, gin.H{"serviceType": "session"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/wizard/"+id+"/advance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/wizard/"+id+"/advance", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[sessionBody](t, w)
	assert.Equal(t, 2, body.Session.CurrentPhase)
	assert.Contains(t, body.Errors, "name")

	w = ts.do(t, http.MethodPut, "/api/wizard/"+id+"/phase", token, gin.H{"phase": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/wizard/"+id+"/validate", token, gin.H{"phase": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, w)["valid"])
}

func TestOtherPractitionerForbidden(t *testing.T) {
	ts := newTestServer(t)
	id := ts.start(t, ts.tokenFor(t, "prac-1"))

	w := ts.do(t, http.MethodGet, "/api/wizard/"+id, ts.tokenFor(t, "prac-2"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/wizard/missing", ts.tokenFor(t, "prac-1"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitFailureKeepsSession(t *testing.T) {
	ts := newTestServer(t)
	ts.api.createErr = &estuary.APIError{Status: http.StatusInternalServerError, Message: "database is down"}
	token := ts.tokenFor(t, "prac-1")
	id := ts.start(t, token)
	base := "/api/wizard/" + id

	ts.do(t, http.MethodPut, base+"/type", token, gin.H{"serviceType": "session"})
	ts.do(t, http.MethodPatch, base+"/fields", token, gin.H{"name": "Yoga", "description": "Flow", "durationMinutes": "60"})

	w := ts.do(t, http.MethodPost, base+"/submit", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
	resp := decode[utils.ErrorResponse](t, w)
	assert.Equal(t, "database is down", resp.Message)
	assert.NotNil(t, resp.Toasts)

	w = ts.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[sessionBody](t, w)
	assert.Equal(t, models.WizardEditing, body.Session.Status)
	assert.Equal(t, "Yoga", body.Session.Draft.Name)
}

func TestRevenueShareCappedOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	id := ts.start(t, token)
	base := "/api/wizard/" + id

	w := ts.do(t, http.MethodPost, base+"/revenue", token, gin.H{"practitionerId": "prac-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, base+"/revenue", token, gin.H{"practitionerId": "prac-2", "query": "Bo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPut, base+"/revenue/prac-2", token, gin.H{"percentage": 120})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[sessionBody](t, w)
	require.Len(t, body.Session.Draft.RevenueShares, 1)
	assert.Equal(t, 100, body.Session.Draft.RevenueShares[0].RevenueSharePercentage)
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploads(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	id := ts.start(t, token)

	post := func(path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		return w
	}

	body, ct := multipartBody(t, nil, "notes.txt", []byte("plain text, not an image\n"))
	w := post("/api/wizard/"+id+"/cover-image", body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	resp := decode[utils.ErrorResponse](t, w)
	assert.NotNil(t, resp.Toasts)
	assert.Zero(t, ts.store.calls)

	body, ct = multipartBody(t, map[string]string{"title": "Notes", "resourceType": "document"}, "notes.txt", []byte("Session notes\n"))
	w = post("/api/wizard/"+id+"/resources", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[sessionBody](t, w).Session
	require.Len(t, session.Draft.Resources, 1)
	assert.Equal(t, "https://cdn.test/notes.txt", *session.Draft.Resources[0].FileURL)

	w = ts.do(t, http.MethodPost, "/api/wizard/"+id+"/resources", token,
		gin.H{"title": "Guide", "resourceType": "link", "externalUrl": "https://example.com/guide"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[sessionBody](t, w).Session.Draft.Resources, 2)
}

func TestLoginIssuesWorkingToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[map[string]interface{}](t, w)
	assert.Equal(t, "prac-1", login["practitionerId"])
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	w = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"upstream-token"}, ts.api.tokens)

	w = ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogPractitionerSearch(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")

	w := ts.do(t, http.MethodGet, "/api/catalog/practitioners?q=a", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/catalog/practitioners?q=Bo", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Results []models.PractitionerSummary `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "prac-2", resp.Results[0].ID)

	w = ts.do(t, http.MethodGet, "/api/catalog/modalities", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())
}

func TestQuestions(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")

	w := ts.do(t, http.MethodPost, "/api/services/svc-1/questions", token, gin.H{"question_text": "Allergies?", "question_type": "select"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/services/svc-1/questions", token, gin.H{"question_text": "Allergies?", "question_type": "dropdown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/services/svc-1/questions", token, gin.H{"question_text": "Allergies?", "question_type": "text"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/api/services/svc-1/questions/q-1", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStatusMappingForUpstreamNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	w := ts.do(t, http.MethodPost, "/api/wizard", token, gin.H{"editingServiceId": "gone"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, errors.Is(&estuary.APIError{Status: http.StatusNotFound}, estuary.ErrNotFound))
}

func TestBundleSetInOneRequest(t *testing.T) {
	ts := newTestServer(t)
	token := ts.tokenFor(t, "prac-1")
	id := ts.start(t, token)
	base := "/api/wizard/" + id

	w := ts.do(t, http.MethodPut, base+"/type", token, gin.H{"serviceType": "bundle"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPut, base+"/bundle", token, gin.H{"sessionServiceId": "nope", "sessionsIncluded": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[sessionBody](t, w).Session.Draft.Bundle)

	w = ts.do(t, http.MethodPut, base+"/bundle", token, gin.H{"sessionServiceId": "s45", "sessionsIncluded": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[sessionBody](t, w)
	require.NotNil(t, body.Session.Draft.Bundle)
	assert.Equal(t, 10, body.Session.Draft.Bundle.SessionsIncluded)
	assert.Equal(t, 425.0, body.Session.Draft.Price)
}
