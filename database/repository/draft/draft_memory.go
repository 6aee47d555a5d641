package draftRepo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"estuary/models"
)

// MemoryDraftRepo keeps sessions in process memory with the same version
// semantics as the Mongo repository. Stored values are deep copies.
type MemoryDraftRepo struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemoryDraftRepo() *MemoryDraftRepo {
	return &MemoryDraftRepo{sessions: map[string][]byte{}}
}

func (r *MemoryDraftRepo) Create(_ context.Context, s *models.WizardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Version = 1
	return r.put(s)
}

func (r *MemoryDraftRepo) GetByID(_ context.Context, id string) (*models.WizardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *MemoryDraftRepo) Update(_ context.Context, s *models.WizardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.get(s.ID)
	if err != nil {
		return err
	}
	if current.Version != s.Version {
		return ErrConcurrentUpdate
	}
	s.Version++
	return r.put(s)
}

func (r *MemoryDraftRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrDraftNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *MemoryDraftRepo) ListByPractitioner(_ context.Context, practitionerID string) ([]models.WizardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WizardSession
	for id := range r.sessions {
		s, err := r.get(id)
		if err != nil {
			return nil, err
		}
		if s.PractitionerID == practitionerID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryDraftRepo) put(s *models.WizardSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.sessions[s.ID] = raw
	return nil
}

func (r *MemoryDraftRepo) get(id string) (*models.WizardSession, error) {
	raw, ok := r.sessions[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	var s models.WizardSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
