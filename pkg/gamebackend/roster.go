package gamebackend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// RosterClient talks to the upstream champion-user (roster) endpoints.
type RosterClient struct {
	client *Client
}

// RosterEntry is one champion owned by one game account. Unique per
// (game account, champion): re-adding the same champion updates in place.
type RosterEntry struct {
	ID            int64  `json:"id"`
	GameAccountID int64  `json:"game_account_id"`
	ChampionID    int64  `json:"champion_id"`
	Rarity        Rarity `json:"rarity"`
	Signature     int    `json:"signature"`
	ChampionName  string `json:"champion_name"`
	ChampionClass string `json:"champion_class,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// UpsertRosterEntryRequest creates or updates a roster entry.
type UpsertRosterEntryRequest struct {
	GameAccountID int64  `json:"game_account_id" validate:"required"`
	ChampionID    int64  `json:"champion_id" validate:"required"`
	Rarity        Rarity `json:"rarity" validate:"required,rarity"`
	Signature     int    `json:"signature" validate:"gte=0,lte=200"`
}

// BulkUpsertRequest pushes a batch of roster rows. The upstream applies
// the batch atomically: one bad row fails the whole batch.
type BulkUpsertRequest struct {
	GameAccountID int64           `json:"game_account_id" validate:"required"`
	Entries       []BulkRosterRow `json:"entries" validate:"required,dive"`
}

// BulkRosterRow is one row of a bulk roster upsert, addressed by champion name.
type BulkRosterRow struct {
	ChampionName string `json:"champion_name" validate:"required"`
	Rarity       Rarity `json:"rarity" validate:"required,rarity"`
	Signature    int    `json:"signature" validate:"gte=0,lte=200"`
}

// UpgradeRequest is a pending ask to raise a roster entry's rarity.
// Terminal states: cancelled (deleted) or fulfilled (done_at set upstream).
type UpgradeRequest struct {
	ID                     int64      `json:"id"`
	ChampionUserID         int64      `json:"champion_user_id"`
	RequestedRarity        Rarity     `json:"requested_rarity"`
	CurrentRarity          Rarity     `json:"current_rarity"`
	RequesterGameAccountID int64      `json:"requester_game_account_id"`
	CreatedAt              time.Time  `json:"created_at"`
	DoneAt                 *time.Time `json:"done_at,omitempty"`
}

// List returns the roster of a game account.
func (r *RosterClient) List(ctx context.Context, token string, gameAccountID int64) ([]RosterEntry, error) {
	query := url.Values{}
	query.Set("game_account_id", strconv.FormatInt(gameAccountID, 10))

	var entries []RosterEntry
	if err := r.client.do(ctx, http.MethodGet, "/champion-users", token, query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Upsert creates a roster entry, or updates rarity/signature when the
// (game account, champion) pair already exists.
func (r *RosterClient) Upsert(ctx context.Context, token string, req *UpsertRosterEntryRequest) (*RosterEntry, error) {
	var entry RosterEntry
	if err := r.client.do(ctx, http.MethodPost, "/champion-users", token, nil, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkUpsert pushes a whole batch of roster rows atomically.
func (r *RosterClient) BulkUpsert(ctx context.Context, token string, req *BulkUpsertRequest) ([]RosterEntry, error) {
	var entries []RosterEntry
	if err := r.client.do(ctx, http.MethodPost, "/champion-users/bulk", token, nil, req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a roster entry.
func (r *RosterClient) Delete(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/champion-users/%d", id)
	return r.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// Upgrade raises a roster entry to the given rarity.
func (r *RosterClient) Upgrade(ctx context.Context, token string, id int64, rarity Rarity) (*RosterEntry, error) {
	var entry RosterEntry
	path := fmt.Sprintf("/champion-users/%d/upgrade", id)
	body := map[string]Rarity{"rarity": rarity}
	if err := r.client.do(ctx, http.MethodPatch, path, token, nil, body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateUpgradeRequest files a pending upgrade ask for a roster entry.
func (r *RosterClient) CreateUpgradeRequest(ctx context.Context, token string, championUserID int64, requested Rarity) (*UpgradeRequest, error) {
	var req UpgradeRequest
	body := map[string]interface{}{
		"champion_user_id": championUserID,
		"requested_rarity": requested,
	}
	if err := r.client.do(ctx, http.MethodPost, "/champion-users/upgrade-requests", token, nil, body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListUpgradeRequests returns pending upgrade requests for an alliance.
func (r *RosterClient) ListUpgradeRequests(ctx context.Context, token string, allianceID int64) ([]UpgradeRequest, error) {
	query := url.Values{}
	query.Set("alliance_id", strconv.FormatInt(allianceID, 10))

	var requests []UpgradeRequest
	if err := r.client.do(ctx, http.MethodGet, "/champion-users/upgrade-requests", token, query, nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// CancelUpgradeRequest deletes a pending upgrade request.
func (r *RosterClient) CancelUpgradeRequest(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/champion-users/upgrade-requests/%d", id)
	return r.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}
