package dto

import (
	"time"

	"go-warroom/pkg/gamebackend"
)

// BattlegroupPathInput carries the common path and auth parameters.
type BattlegroupPathInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
	AllianceID    int64  `path:"allianceID" doc:"Alliance ID"`
	Battlegroup   int    `path:"battlegroup" minimum:"1" maximum:"3" doc:"Battlegroup number"`
}

// GetStateInput represents the input for loading battlegroup state
type GetStateInput struct {
	BattlegroupPathInput
	Force bool `query:"force" doc:"Bypass the mirrored state and reload from the backend"`
}

// PlaceDefenderBody is the placement request body
type PlaceDefenderBody struct {
	NodeNumber     int   `json:"node_number" minimum:"1" maximum:"50" doc:"War map node"`
	ChampionUserID int64 `json:"champion_user_id" doc:"Roster entry to place"`
	GameAccountID  int64 `json:"game_account_id" doc:"Owning game account"`
}

// PlaceDefenderInput represents the input for placing a defender
type PlaceDefenderInput struct {
	BattlegroupPathInput
	Body PlaceDefenderBody `json:"body"`
}

// RemoveDefenderInput represents the input for clearing one node
type RemoveDefenderInput struct {
	BattlegroupPathInput
	Node int `path:"node" minimum:"1" maximum:"50" doc:"War map node"`
}

// ClearInput represents the input for clearing the whole battlegroup
type ClearInput struct {
	BattlegroupPathInput
}

// BattlegroupStateResponse is the mirrored battlegroup state
type BattlegroupStateResponse struct {
	AllianceID  int64                           `json:"alliance_id"`
	Battlegroup int                             `json:"battlegroup"`
	Placements  map[int]gamebackend.Placement   `json:"placements"`
	Available   []gamebackend.AvailableChampion `json:"available_champions"`
	Members     []gamebackend.BattlegroupMember `json:"members"`
	LoadedAt    time.Time                       `json:"loaded_at"`
}

// StateOutput represents the output carrying battlegroup state
type StateOutput struct {
	Body BattlegroupStateResponse `json:"body"`
}
