package gamebackend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// AlliancesClient talks to the upstream alliance endpoints.
type AlliancesClient struct {
	client *Client
}

// Alliance is a player alliance.
type Alliance struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Tag                string           `json:"tag"`
	OwnerGameAccountID int64            `json:"owner_game_account_id"`
	Officers           []GameAccount    `json:"officers,omitempty"`
	Members            []AllianceMember `json:"members,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// AllianceMember is a game account enriched with its alliance standing.
type AllianceMember struct {
	GameAccount
	IsOwner       bool `json:"is_owner"`
	IsOfficer     bool `json:"is_officer"`
	AllianceGroup *int `json:"alliance_group,omitempty"` // war battlegroup 1-3, nil when unassigned
}

// AllianceRoles is the server-computed capability set for one alliance.
// The companion service never re-derives these from member lists.
type AllianceRoles struct {
	AllianceID int64 `json:"alliance_id"`
	IsOwner    bool  `json:"is_owner"`
	CanManage  bool  `json:"can_manage"`
}

// MyRolesResponse is the single-call role summary for the current user.
type MyRolesResponse struct {
	Roles          []AllianceRoles `json:"roles"`
	GameAccountIDs []int64         `json:"game_account_ids"`
}

// CreateAllianceRequest is the payload for creating an alliance.
type CreateAllianceRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=64"`
	Tag                string `json:"tag" validate:"required,min=2,max=8"`
	OwnerGameAccountID int64  `json:"owner_game_account_id" validate:"required"`
}

// List returns all alliances visible to the caller.
func (a *AlliancesClient) List(ctx context.Context, token string) ([]Alliance, error) {
	var alliances []Alliance
	if err := a.client.do(ctx, http.MethodGet, "/alliances", token, nil, nil, &alliances); err != nil {
		return nil, err
	}
	return alliances, nil
}

// Get returns one alliance with officers and members.
func (a *AlliancesClient) Get(ctx context.Context, token string, id int64) (*Alliance, error) {
	var alliance Alliance
	path := fmt.Sprintf("/alliances/%d", id)
	if err := a.client.do(ctx, http.MethodGet, path, token, nil, nil, &alliance); err != nil {
		return nil, err
	}
	return &alliance, nil
}

// Create registers a new alliance owned by one of the caller's accounts.
func (a *AlliancesClient) Create(ctx context.Context, token string, req *CreateAllianceRequest) (*Alliance, error) {
	var alliance Alliance
	if err := a.client.do(ctx, http.MethodPost, "/alliances", token, nil, req, &alliance); err != nil {
		return nil, err
	}
	return &alliance, nil
}

// Delete disbands an alliance.
func (a *AlliancesClient) Delete(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/alliances/%d", id)
	return a.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// AddOfficer promotes a member to officer.
func (a *AlliancesClient) AddOfficer(ctx context.Context, token string, allianceID, gameAccountID int64) error {
	path := fmt.Sprintf("/alliances/%d/officers", allianceID)
	body := map[string]int64{"game_account_id": gameAccountID}
	return a.client.do(ctx, http.MethodPost, path, token, nil, body, nil)
}

// RemoveOfficer demotes an officer back to member.
func (a *AlliancesClient) RemoveOfficer(ctx context.Context, token string, allianceID, gameAccountID int64) error {
	path := fmt.Sprintf("/alliances/%d/officers/%d", allianceID, gameAccountID)
	return a.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// Members returns the alliance member list.
func (a *AlliancesClient) Members(ctx context.Context, token string, allianceID int64) ([]AllianceMember, error) {
	var members []AllianceMember
	path := fmt.Sprintf("/alliances/%d/members", allianceID)
	if err := a.client.do(ctx, http.MethodGet, path, token, nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember adds a game account to the alliance.
func (a *AlliancesClient) AddMember(ctx context.Context, token string, allianceID, gameAccountID int64) error {
	path := fmt.Sprintf("/alliances/%d/members", allianceID)
	body := map[string]int64{"game_account_id": gameAccountID}
	return a.client.do(ctx, http.MethodPost, path, token, nil, body, nil)
}

// RemoveMember removes a game account from the alliance.
func (a *AlliancesClient) RemoveMember(ctx context.Context, token string, allianceID, gameAccountID int64) error {
	path := fmt.Sprintf("/alliances/%d/members/%d", allianceID, gameAccountID)
	return a.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// MyRoles returns the precomputed owner/manage flags for every alliance
// any of the caller's accounts belongs to, in a single call.
func (a *AlliancesClient) MyRoles(ctx context.Context, token string) (*MyRolesResponse, error) {
	var resp MyRolesResponse
	if err := a.client.do(ctx, http.MethodGet, "/alliances/my-roles", token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
