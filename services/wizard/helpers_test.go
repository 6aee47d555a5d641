package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	draftRepo "estuary/database/repository/draft"
	"estuary/models"
	"estuary/services/storage"
)

const owner = "prac-1"

type fakeAPI struct {
	services  map[string]*models.ServiceRecord
	created   []models.ServiceRequest
	updated   map[string]models.ServiceRequest
	createErr error

	// When set, CreateService signals entered and waits for gate to close.
	entered chan struct{}
	gate    chan struct{}
	mu      sync.Mutex
}

func (f *fakeAPI) GetService(_ context.Context, id string) (*models.ServiceRecord, error) {
	rec, ok := f.services[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return rec, nil
}

func (f *fakeAPI) CreateService(_ context.Context, req models.ServiceRequest) (*models.ServiceRecord, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &models.ServiceRecord{ID: "svc-new", Name: req.Name}, nil
}

func (f *fakeAPI) UpdateService(_ context.Context, id string, req models.ServiceRequest) (*models.ServiceRecord, error) {
	if f.updated == nil {
		f.updated = map[string]models.ServiceRequest{}
	}
	f.updated[id] = req
	return &models.ServiceRecord{ID: id, Name: req.Name}, nil
}

type fakeCatalog struct {
	sessions      []models.ServiceSummary
	practitioners []models.PractitionerSummary
	invalidated   []string
}

func (f *fakeCatalog) SessionServices(context.Context, string) ([]models.ServiceSummary, error) {
	return f.sessions, nil
}

func (f *fakeCatalog) SearchPractitioners(context.Context, string) ([]models.PractitionerSummary, error) {
	return f.practitioners, nil
}

func (f *fakeCatalog) InvalidateServices(_ context.Context, practitionerID string) error {
	f.invalidated = append(f.invalidated, practitionerID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []models.Toast
}

func (n *recordingNotifier) Notify(_ context.Context, t models.Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, t)
}

func (n *recordingNotifier) last() models.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.toasts) == 0 {
		return models.Toast{}
	}
	return n.toasts[len(n.toasts)-1]
}

type stubStorage struct{ calls int }

func (s *stubStorage) Upload(_ context.Context, f *storage.File, contentType string, _ models.UploadKind) (*models.UploadedFile, error) {
	s.calls++
	return &models.UploadedFile{MediaID: "m-" + f.Name, URL: "https://cdn.test/" + f.Name, ContentType: contentType, Size: f.Size}, nil
}

type fixture struct {
	svc      *Service
	api      *fakeAPI
	catalog  *fakeCatalog
	notifier *recordingNotifier
	store    *stubStorage
}

func sessionServices() []models.ServiceSummary {
	return []models.ServiceSummary{
		{ID: "s30", Name: "Intro", ServiceType: models.ServiceTypeSession, Price: 40, DurationMinutes: 30},
		{ID: "s45", Name: "Deep", ServiceType: models.ServiceTypeSession, Price: 50, DurationMinutes: 45},
		{ID: "s60", Name: "Full", ServiceType: models.ServiceTypeSession, Price: 60, DurationMinutes: 60},
	}
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		api:      &fakeAPI{services: map[string]*models.ServiceRecord{}},
		catalog:  &fakeCatalog{sessions: sessionServices()},
		notifier: &recordingNotifier{},
		store:    &stubStorage{},
	}
	if opts.Now == nil {
		clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		opts.Now = func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}
	}
	uploader := storage.NewUploader(f.store, storage.DefaultLimits(), zap.NewNop())
	f.svc = NewService(draftRepo.NewMemoryDraftRepo(), f.api, f.catalog, uploader, f.notifier, zap.NewNop(), opts)
	return f
}
