package dto

import (
	"go-warroom/internal/roster/services"
	"go-warroom/pkg/gamebackend"
)

// ListRosterInput represents the input for listing a roster
type ListRosterInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
	GameAccountID int64  `path:"gameAccountID" doc:"Game account ID"`
}

// ExportRosterInput represents the input for exporting a roster
type ExportRosterInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
	GameAccountID int64  `path:"gameAccountID" doc:"Game account ID"`
}

// ImportRosterRequest is the import payload
type ImportRosterRequest struct {
	Rows []gamebackend.BulkRosterRow `json:"rows" doc:"Roster rows to import"`
}

// ImportRosterInput represents the input for importing a roster
type ImportRosterInput struct {
	Authorization string              `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string              `header:"Cookie" doc:"Session cookie for authentication"`
	GameAccountID int64               `path:"gameAccountID" doc:"Game account ID"`
	Body          ImportRosterRequest `json:"body"`
}

// UpgradeOptionsInput represents the input for listing upgrade options
type UpgradeOptionsInput struct {
	Rarity string `query:"rarity" validate:"required" doc:"Current rarity, e.g. 6r5"`
}

// UpgradeEntryRequest is the upgrade payload
type UpgradeEntryRequest struct {
	Rarity string `json:"rarity" validate:"required" doc:"Target rarity within the same star tier"`
}

// UpgradeEntryInput represents the input for upgrading a roster entry
type UpgradeEntryInput struct {
	Authorization string              `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string              `header:"Cookie" doc:"Session cookie for authentication"`
	ID            int64               `path:"id" doc:"Roster entry ID"`
	Body          UpgradeEntryRequest `json:"body"`
}

// CreateUpgradeRequestBody is the upgrade request payload
type CreateUpgradeRequestBody struct {
	ChampionUserID  int64  `json:"champion_user_id" doc:"Roster entry the request is for"`
	RequestedRarity string `json:"requested_rarity" doc:"Asked-for rarity"`
}

// CreateUpgradeRequestInput represents the input for filing an upgrade request
type CreateUpgradeRequestInput struct {
	Authorization string                   `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string                   `header:"Cookie" doc:"Session cookie for authentication"`
	Body          CreateUpgradeRequestBody `json:"body"`
}

// ListUpgradeRequestsInput represents the input for listing upgrade requests
type ListUpgradeRequestsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
	AllianceID    int64  `query:"alliance_id" validate:"required" doc:"Alliance ID"`
}

// CancelUpgradeRequestInput represents the input for cancelling an upgrade request
type CancelUpgradeRequestInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
	ID            int64  `path:"id" doc:"Upgrade request ID"`
}

// ListRosterOutput represents the output for listing a roster
type ListRosterOutput struct {
	Body []gamebackend.RosterEntry `json:"body"`
}

// ExportRosterResponse is the portable roster document
type ExportRosterResponse struct {
	GameAccountID int64                       `json:"game_account_id"`
	Rows          []gamebackend.BulkRosterRow `json:"rows"`
}

// ExportRosterOutput represents the output for exporting a roster
type ExportRosterOutput struct {
	Body ExportRosterResponse `json:"body"`
}

// ImportRosterOutput represents the output for importing a roster
type ImportRosterOutput struct {
	Body services.ImportReport `json:"body"`
}

// UpgradeOptionsResponse lists the rarities reachable from the given one
type UpgradeOptionsResponse struct {
	Rarity  string               `json:"rarity"`
	Options []gamebackend.Rarity `json:"options"`
}

// UpgradeOptionsOutput represents the output for listing upgrade options
type UpgradeOptionsOutput struct {
	Body UpgradeOptionsResponse `json:"body"`
}

// UpgradeEntryOutput represents the output for upgrading a roster entry
type UpgradeEntryOutput struct {
	Body gamebackend.RosterEntry `json:"body"`
}

// CreateUpgradeRequestOutput represents the output for filing an upgrade request
type CreateUpgradeRequestOutput struct {
	Body gamebackend.UpgradeRequest `json:"body"`
}

// ListUpgradeRequestsOutput represents the output for listing upgrade requests
type ListUpgradeRequestsOutput struct {
	Body []gamebackend.UpgradeRequest `json:"body"`
}

// CancelUpgradeRequestOutput represents the output for cancelling an upgrade request
type CancelUpgradeRequestOutput struct {
	Body struct {
		Success bool `json:"success"`
	} `json:"body"`
}
