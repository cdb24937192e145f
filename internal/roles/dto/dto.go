package dto

import (
	"time"

	"go-warroom/pkg/gamebackend"
)

// MyRolesInput represents the input for the caller's alliance roles
type MyRolesInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
}

// RefreshRolesInput represents the input for a forced roles refresh
type RefreshRolesInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
}

// RolesResponse represents a user's resolved alliance roles
type RolesResponse struct {
	Roles          []gamebackend.AllianceRoles `json:"roles"`
	GameAccountIDs []int64                     `json:"game_account_ids"`
	FetchedAt      time.Time                   `json:"fetched_at"`
}

// MyRolesOutput represents the output for the caller's alliance roles
type MyRolesOutput struct {
	Body RolesResponse `json:"body"`
}

// RefreshRolesOutput represents the output for a forced roles refresh
type RefreshRolesOutput struct {
	Body RolesResponse `json:"body"`
}
