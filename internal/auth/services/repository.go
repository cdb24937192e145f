package services

import (
	"context"
	"time"

	"go-warroom/internal/auth/models"
	"go-warroom/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Repository handles database operations for the auth module
type Repository struct {
	mongodb *database.MongoDB
}

// NewRepository creates a new auth repository
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{mongodb: mongodb}
}

// UpsertSession creates or replaces a session document.
func (r *Repository) UpsertSession(ctx context.Context, session *models.Session) error {
	tracer := otel.Tracer("go-warroom/auth")
	ctx, span := tracer.Start(ctx, "auth.repository.upsert_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("service", "auth"),
		attribute.String("session_id", session.ID),
	)

	collection := r.mongodb.Collection("sessions")

	now := time.Now()
	session.UpdatedAt = now
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, opts)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// GetSession retrieves a session by ID, or nil when absent.
func (r *Repository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	tracer := otel.Tracer("go-warroom/auth")
	ctx, span := tracer.Start(ctx, "auth.repository.get_session")
	defer span.End()

	collection := r.mongodb.Collection("sessions")

	var session models.Session
	err := collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session document.
func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	collection := r.mongodb.Collection("sessions")
	_, err := collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// ListSessionsExpiringWithin returns authenticated sessions whose access
// token expires within the window and that still hold a refresh token.
func (r *Repository) ListSessionsExpiringWithin(ctx context.Context, window time.Duration, limit int) ([]*models.Session, error) {
	tracer := otel.Tracer("go-warroom/auth")
	ctx, span := tracer.Start(ctx, "auth.repository.list_expiring_sessions")
	defer span.End()

	collection := r.mongodb.Collection("sessions")

	filter := bson.M{
		"authenticated": true,
		"backend_access_token_expires_at": bson.M{
			"$lt": time.Now().Add(window),
		},
		"$or": []bson.M{
			{"backend_refresh_token": bson.M{"$ne": ""}},
			{"discord_refresh_token": bson.M{"$ne": ""}},
		},
	}

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sessions, nil
}

// CreateOAuthState stores a CSRF state for the login flow.
func (r *Repository) CreateOAuthState(ctx context.Context, state *models.OAuthState) error {
	collection := r.mongodb.Collection("oauth_states")
	state.CreatedAt = time.Now()
	_, err := collection.InsertOne(ctx, state)
	return err
}

// ConsumeOAuthState fetches and deletes a state, returning nil when the
// state is unknown or already expired.
func (r *Repository) ConsumeOAuthState(ctx context.Context, state string) (*models.OAuthState, error) {
	collection := r.mongodb.Collection("oauth_states")

	var stored models.OAuthState
	err := collection.FindOneAndDelete(ctx, bson.M{"_id": state}).Decode(&stored)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, nil
	}
	return &stored, nil
}

// DeleteExpiredStates removes OAuth states past their expiry.
func (r *Repository) DeleteExpiredStates(ctx context.Context) error {
	collection := r.mongodb.Collection("oauth_states")
	_, err := collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	return err
}

// CheckHealth verifies database connectivity.
func (r *Repository) CheckHealth(ctx context.Context) error {
	return r.mongodb.HealthCheck(ctx)
}
