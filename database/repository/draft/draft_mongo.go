package draftRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estuary/models"
)

const collectionName = "wizard_sessions"

// MongoDraftRepo implements DraftRepository using MongoDB.
type MongoDraftRepo struct {
	coll *mongo.Collection
	ttl  time.Duration
}

// NewMongoDraftRepo opens the wizard session collection and ensures its indexes.
// Sessions expire ttl after their last update.
func NewMongoDraftRepo(db *mongo.Database, ttl time.Duration) (DraftRepository, error) {
	r := &MongoDraftRepo{coll: db.Collection(collectionName), ttl: ttl}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoDraftRepo) Create(ctx context.Context, s *models.WizardSession) error {
	s.Version = 1
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to insert wizard session %s: %w", s.ID, err)
	}
	return nil
}

func (r *MongoDraftRepo) GetByID(ctx context.Context, id string) (*models.WizardSession, error) {
	var s models.WizardSession
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wizard session %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoDraftRepo) Update(ctx context.Context, s *models.WizardSession) error {
	expected := s.Version
	next := *s
	next.Version = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": s.ID, "version": expected}, &next)
	if err != nil {
		return fmt.Errorf("failed to update wizard session %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": s.ID})
		if err != nil {
			return fmt.Errorf("failed to check wizard session %s: %w", s.ID, err)
		}
		if n == 0 {
			return ErrDraftNotFound
		}
		return ErrConcurrentUpdate
	}
	s.Version = next.Version
	return nil
}

func (r *MongoDraftRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete wizard session %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (r *MongoDraftRepo) ListByPractitioner(ctx context.Context, practitionerID string) ([]models.WizardSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}).SetLimit(50)
	cursor, err := r.coll.Find(ctx, bson.M{"practitionerId": practitionerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list wizard sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.WizardSession
	for cursor.Next(ctx) {
		var s models.WizardSession
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode wizard session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, cursor.Err()
}
