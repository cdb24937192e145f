package routes

import (
	"context"

	"go-warroom/internal/defense/dto"
	"go-warroom/internal/defense/services"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// BackendTokenSource yields the upstream bearer token for a session.
type BackendTokenSource interface {
	BackendToken(ctx context.Context, sessionID string) (string, error)
}

// RegisterDefenseRoutes registers war-defense routes on a shared API
func RegisterDefenseRoutes(api huma.API, basePath string, defenseService *services.DefenseService, validator middleware.TokenValidator, tokens BackendTokenSource) {
	authenticate := func(ctx context.Context, authHeader, cookieHeader string) (string, error) {
		token := middleware.TokenFromHeaders(authHeader, cookieHeader)
		if token == "" {
			return "", huma.Error401Unauthorized("Authentication required")
		}
		user, err := validator.ValidateToken(token)
		if err != nil {
			return "", huma.Error401Unauthorized("Authentication required")
		}
		bearer, err := tokens.BackendToken(ctx, user.SessionID)
		if err != nil {
			return "", huma.Error401Unauthorized("Session expired")
		}
		return bearer, nil
	}

	toResponse := func(state *services.BattlegroupState) dto.BattlegroupStateResponse {
		return dto.BattlegroupStateResponse{
			AllianceID:  state.AllianceID,
			Battlegroup: state.Battlegroup,
			Placements:  state.Placements,
			Available:   state.Available,
			Members:     state.Members,
			LoadedAt:    state.LoadedAt,
		}
	}

	huma.Register(api, huma.Operation{
		OperationID: "defense-get-state",
		Method:      "GET",
		Path:        basePath + "/alliances/{allianceID}/bg/{battlegroup}",
		Summary:     "Get battlegroup defense state",
		Description: "Return the mirrored placements, champion pool and member quota usage of a battlegroup",
		Tags:        []string{"Defense"},
	}, func(ctx context.Context, input *dto.GetStateInput) (*dto.StateOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		state, err := defenseService.Load(ctx, bearer, input.AllianceID, input.Battlegroup, input.Force)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to load battlegroup state", err)
		}
		return &dto.StateOutput{Body: toResponse(state)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "defense-place",
		Method:      "POST",
		Path:        basePath + "/alliances/{allianceID}/bg/{battlegroup}/place",
		Summary:     "Place a defender",
		Description: "Place a champion on a war map node, displacing any previous defender of that node",
		Tags:        []string{"Defense"},
	}, func(ctx context.Context, input *dto.PlaceDefenderInput) (*dto.StateOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		req := &gamebackend.PlaceDefenderRequest{
			NodeNumber:     input.Body.NodeNumber,
			ChampionUserID: input.Body.ChampionUserID,
			GameAccountID:  input.Body.GameAccountID,
		}
		state, err := defenseService.Place(ctx, bearer, input.AllianceID, input.Battlegroup, req)
		if err != nil {
			if gamebackend.IsStatus(err, 409) {
				return nil, huma.Error409Conflict("Placement rejected", err)
			}
			return nil, huma.Error502BadGateway("Failed to place defender", err)
		}
		return &dto.StateOutput{Body: toResponse(state)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "defense-remove",
		Method:      "DELETE",
		Path:        basePath + "/alliances/{allianceID}/bg/{battlegroup}/node/{node}",
		Summary:     "Remove a defender",
		Description: "Clear one war map node. Clearing an empty node succeeds without change.",
		Tags:        []string{"Defense"},
	}, func(ctx context.Context, input *dto.RemoveDefenderInput) (*dto.StateOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		state, err := defenseService.Remove(ctx, bearer, input.AllianceID, input.Battlegroup, input.Node)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to remove defender", err)
		}
		return &dto.StateOutput{Body: toResponse(state)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "defense-clear",
		Method:      "DELETE",
		Path:        basePath + "/alliances/{allianceID}/bg/{battlegroup}/clear",
		Summary:     "Clear the battlegroup",
		Description: "Remove every placement of the battlegroup and reload its state",
		Tags:        []string{"Defense"},
	}, func(ctx context.Context, input *dto.ClearInput) (*dto.StateOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		state, err := defenseService.Clear(ctx, bearer, input.AllianceID, input.Battlegroup)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to clear battlegroup", err)
		}
		return &dto.StateOutput{Body: toResponse(state)}, nil
	})
}
