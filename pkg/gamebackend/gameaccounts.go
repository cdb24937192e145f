package gamebackend

import (
	"context"
	"fmt"
	"net/http"
)

// GameAccountsClient talks to the upstream game-account endpoints.
type GameAccountsClient struct {
	client *Client
}

// GameAccount is an in-game account owned by a user. A user may own
// several; the upstream enforces at most one primary per user.
type GameAccount struct {
	ID         int64  `json:"id"`
	UserID     string `json:"user_id"`
	GamePseudo string `json:"game_pseudo"`
	IsPrimary  bool   `json:"is_primary"`
	AllianceID *int64 `json:"alliance_id,omitempty"`
}

// CreateGameAccountRequest is the payload for creating a game account.
type CreateGameAccountRequest struct {
	GamePseudo string `json:"game_pseudo" validate:"required,min=2,max=64"`
	IsPrimary  bool   `json:"is_primary"`
}

// List returns the caller's game accounts.
func (g *GameAccountsClient) List(ctx context.Context, token string) ([]GameAccount, error) {
	var accounts []GameAccount
	if err := g.client.do(ctx, http.MethodGet, "/game-accounts", token, nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Create registers a new game account for the caller.
func (g *GameAccountsClient) Create(ctx context.Context, token string, req *CreateGameAccountRequest) (*GameAccount, error) {
	var account GameAccount
	if err := g.client.do(ctx, http.MethodPost, "/game-accounts", token, nil, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Delete removes a game account.
func (g *GameAccountsClient) Delete(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/game-accounts/%d", id)
	return g.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}
