package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-warroom/pkg/config"
	"go-warroom/pkg/database"
	"go-warroom/pkg/gamebackend"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const rolesCacheKeyPrefix = "warroom:roles:"

// ResolvedRoles is a user's server-computed alliance role set together
// with the game accounts the user owns. Flags come from the upstream
// backend; they are cached but never computed locally.
type ResolvedRoles struct {
	Roles          []gamebackend.AllianceRoles `json:"roles"`
	GameAccountIDs []int64                     `json:"game_account_ids"`
	FetchedAt      time.Time                   `json:"fetched_at"`
}

// RolesFor returns the role flags for one alliance.
func (r *ResolvedRoles) RolesFor(allianceID int64) (gamebackend.AllianceRoles, bool) {
	for _, role := range r.Roles {
		if role.AllianceID == allianceID {
			return role, true
		}
	}
	return gamebackend.AllianceRoles{}, false
}

// IsOwner reports whether the user owns the alliance.
func (r *ResolvedRoles) IsOwner(allianceID int64) bool {
	role, ok := r.RolesFor(allianceID)
	return ok && role.IsOwner
}

// CanManage reports whether the user may manage the alliance (owner or
// officer).
func (r *ResolvedRoles) CanManage(allianceID int64) bool {
	role, ok := r.RolesFor(allianceID)
	return ok && role.CanManage
}

// IsMine reports whether a game account belongs to the user.
func (r *ResolvedRoles) IsMine(gameAccountID int64) bool {
	for _, id := range r.GameAccountIDs {
		if id == gameAccountID {
			return true
		}
	}
	return false
}

// RoleService resolves alliance roles from the upstream backend and
// caches them per user in Redis.
type RoleService struct {
	redis   *database.Redis
	backend *gamebackend.Client
	ttl     time.Duration
}

// NewRoleService creates a new role service
func NewRoleService(redis *database.Redis, backend *gamebackend.Client) *RoleService {
	ttl := time.Duration(config.GetIntEnv("ROLES_CACHE_TTL_SECONDS", 300)) * time.Second
	return &RoleService{
		redis:   redis,
		backend: backend,
		ttl:     ttl,
	}
}

// Resolve returns the user's roles, from cache when fresh. The bearer
// token is the session's upstream token.
func (s *RoleService) Resolve(ctx context.Context, userID, bearer string) (*ResolvedRoles, error) {
	tracer := otel.Tracer("go-warroom/roles")
	ctx, span := tracer.Start(ctx, "roles.service.resolve")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	key := rolesCacheKeyPrefix + userID

	if s.redis != nil {
		var cached ResolvedRoles
		err := s.redis.GetJSON(ctx, key, &cached)
		if err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
		if !database.IsNotFound(err) {
			slog.WarnContext(ctx, "Roles cache read failed", "error", err)
		}
	}

	resolved, err := s.fetch(ctx, bearer)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, key, resolved, s.ttl); err != nil {
			slog.WarnContext(ctx, "Roles cache write failed", "error", err)
		}
	}

	return resolved, nil
}

// Refresh drops the cached roles and fetches fresh ones.
func (s *RoleService) Refresh(ctx context.Context, userID, bearer string) (*ResolvedRoles, error) {
	if err := s.Invalidate(ctx, userID); err != nil {
		slog.WarnContext(ctx, "Roles cache invalidation failed", "error", err, "user_id", userID)
	}
	return s.Resolve(ctx, userID, bearer)
}

// Invalidate removes the user's cached roles.
func (s *RoleService) Invalidate(ctx context.Context, userID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Delete(ctx, rolesCacheKeyPrefix+userID)
}

func (s *RoleService) fetch(ctx context.Context, bearer string) (*ResolvedRoles, error) {
	myRoles, err := s.backend.Alliances.MyRoles(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alliance roles: %w", err)
	}

	return &ResolvedRoles{
		Roles:          myRoles.Roles,
		GameAccountIDs: myRoles.GameAccountIDs,
		FetchedAt:      time.Now(),
	}, nil
}
