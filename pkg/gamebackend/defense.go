package gamebackend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefenseClient talks to the upstream war-defense endpoints for one
// alliance battlegroup.
type DefenseClient struct {
	client *Client
}

// Placement is one defender placed on a war-map node.
type Placement struct {
	ID             int64     `json:"id"`
	AllianceID     int64     `json:"alliance_id"`
	Battlegroup    int       `json:"battlegroup"`
	NodeNumber     int       `json:"node_number"`
	ChampionUserID int64     `json:"champion_user_id"`
	GameAccountID  int64     `json:"game_account_id"`
	ChampionName   string    `json:"champion_name"`
	ChampionClass  string    `json:"champion_class,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Rarity         Rarity    `json:"rarity"`
	PlacedByPseudo string    `json:"placed_by_pseudo,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChampionOwner is one account's placeable copy of a champion.
type ChampionOwner struct {
	ChampionUserID int64  `json:"champion_user_id"`
	GameAccountID  int64  `json:"game_account_id"`
	GamePseudo     string `json:"game_pseudo"`
	Rarity         Rarity `json:"rarity"`
	DefenderCount  int    `json:"defender_count"`
}

// AvailableChampion aggregates the owners eligible to place one champion.
// Derived upstream, never persisted.
type AvailableChampion struct {
	ChampionID   int64           `json:"champion_id"`
	ChampionName string          `json:"champion_name"`
	Class        string          `json:"class,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Owners       []ChampionOwner `json:"owners"`
}

// BattlegroupMember is a battlegroup roster row with its defender quota usage.
type BattlegroupMember struct {
	GameAccountID int64  `json:"game_account_id"`
	GamePseudo    string `json:"game_pseudo"`
	DefenderCount int    `json:"defender_count"`
}

// PlaceDefenderRequest places a champion on a node.
type PlaceDefenderRequest struct {
	NodeNumber     int   `json:"node_number" validate:"required,min=1,max=50"`
	ChampionUserID int64 `json:"champion_user_id" validate:"required"`
	GameAccountID  int64 `json:"game_account_id" validate:"required"`
}

func bgPath(allianceID int64, battlegroup int, suffix string) string {
	return fmt.Sprintf("/alliances/%d/defense/bg/%d%s", allianceID, battlegroup, suffix)
}

// GetPlacements returns all placements of a battlegroup.
func (d *DefenseClient) GetPlacements(ctx context.Context, token string, allianceID int64, battlegroup int) ([]Placement, error) {
	var placements []Placement
	if err := d.client.do(ctx, http.MethodGet, bgPath(allianceID, battlegroup, ""), token, nil, nil, &placements); err != nil {
		return nil, err
	}
	return placements, nil
}

// Place puts a champion on a node, overwriting any previous defender there.
func (d *DefenseClient) Place(ctx context.Context, token string, allianceID int64, battlegroup int, req *PlaceDefenderRequest) (*Placement, error) {
	var placement Placement
	if err := d.client.do(ctx, http.MethodPost, bgPath(allianceID, battlegroup, "/place"), token, nil, req, &placement); err != nil {
		return nil, err
	}
	return &placement, nil
}

// RemoveNode clears one node of the battlegroup.
func (d *DefenseClient) RemoveNode(ctx context.Context, token string, allianceID int64, battlegroup, node int) error {
	path := bgPath(allianceID, battlegroup, fmt.Sprintf("/node/%d", node))
	return d.client.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// Clear removes every placement of the battlegroup.
func (d *DefenseClient) Clear(ctx context.Context, token string, allianceID int64, battlegroup int) error {
	return d.client.do(ctx, http.MethodDelete, bgPath(allianceID, battlegroup, "/clear"), token, nil, nil, nil)
}

// AvailableChampions returns the placeable champion pool of the battlegroup.
func (d *DefenseClient) AvailableChampions(ctx context.Context, token string, allianceID int64, battlegroup int) ([]AvailableChampion, error) {
	var champions []AvailableChampion
	if err := d.client.do(ctx, http.MethodGet, bgPath(allianceID, battlegroup, "/available-champions"), token, nil, nil, &champions); err != nil {
		return nil, err
	}
	return champions, nil
}

// Members returns the battlegroup members with their defender counts.
func (d *DefenseClient) Members(ctx context.Context, token string, allianceID int64, battlegroup int) ([]BattlegroupMember, error) {
	var members []BattlegroupMember
	if err := d.client.do(ctx, http.MethodGet, bgPath(allianceID, battlegroup, "/members"), token, nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}
