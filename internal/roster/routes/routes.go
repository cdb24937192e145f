package routes

import (
	"context"

	"go-warroom/internal/roster/dto"
	"go-warroom/internal/roster/services"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// BackendTokenSource yields the upstream bearer token for a session.
type BackendTokenSource interface {
	BackendToken(ctx context.Context, sessionID string) (string, error)
}

// RegisterRosterRoutes registers roster routes on a shared API
func RegisterRosterRoutes(api huma.API, basePath string, rosterService *services.RosterService, validator middleware.TokenValidator, tokens BackendTokenSource) {
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

	huma.Register(api, huma.Operation{
		OperationID: "roster-list",
		Method:      "GET",
		Path:        basePath + "/{gameAccountID}",
		Summary:     "List a roster",
		Description: "Return the champions of one game account",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.ListRosterInput) (*dto.ListRosterOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		entries, err := rosterService.List(ctx, bearer, input.GameAccountID)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to list roster", err)
		}
		return &dto.ListRosterOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-export",
		Method:      "GET",
		Path:        basePath + "/{gameAccountID}/export",
		Summary:     "Export a roster",
		Description: "Return the roster as portable rows that re-import as all-unchanged",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.ExportRosterInput) (*dto.ExportRosterOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		rows, err := rosterService.Export(ctx, bearer, input.GameAccountID)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to export roster", err)
		}
		return &dto.ExportRosterOutput{Body: dto.ExportRosterResponse{
			GameAccountID: input.GameAccountID,
			Rows:          rows,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-import",
		Method:      "POST",
		Path:        basePath + "/{gameAccountID}/import",
		Summary:     "Import a roster",
		Description: "Validate and apply roster rows, returning a per-row report. Valid rows are applied in one atomic batch.",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.ImportRosterInput) (*dto.ImportRosterOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		report, err := rosterService.Import(ctx, bearer, input.GameAccountID, input.Body.Rows)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to import roster", err)
		}
		return &dto.ImportRosterOutput{Body: *report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-upgrade-entry",
		Method:      "PATCH",
		Path:        basePath + "/entries/{id}/upgrade",
		Summary:     "Upgrade a roster entry",
		Description: "Raise a roster entry to a higher rarity within its star tier",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.UpgradeEntryInput) (*dto.UpgradeEntryOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		rarity := gamebackend.Rarity(input.Body.Rarity)
		if !rarity.IsValid() {
			return nil, huma.Error422UnprocessableEntity("Unknown rarity")
		}

		entry, err := rosterService.Upgrade(ctx, bearer, input.ID, rarity)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to upgrade entry", err)
		}
		return &dto.UpgradeEntryOutput{Body: *entry}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-create-upgrade-request",
		Method:      "POST",
		Path:        basePath + "/upgrade-requests",
		Summary:     "File an upgrade request",
		Description: "Ask for a roster entry to be raised to a higher rarity",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.CreateUpgradeRequestInput) (*dto.CreateUpgradeRequestOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		requested := gamebackend.Rarity(input.Body.RequestedRarity)
		if !requested.IsValid() {
			return nil, huma.Error422UnprocessableEntity("Unknown rarity")
		}

		request, err := rosterService.RequestUpgrade(ctx, bearer, input.Body.ChampionUserID, requested)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to file upgrade request", err)
		}
		return &dto.CreateUpgradeRequestOutput{Body: *request}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-list-upgrade-requests",
		Method:      "GET",
		Path:        basePath + "/upgrade-requests",
		Summary:     "List upgrade requests",
		Description: "Return an alliance's pending upgrade requests",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.ListUpgradeRequestsInput) (*dto.ListUpgradeRequestsOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		requests, err := rosterService.ListUpgradeRequests(ctx, bearer, input.AllianceID)
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to list upgrade requests", err)
		}
		return &dto.ListUpgradeRequestsOutput{Body: requests}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-cancel-upgrade-request",
		Method:      "DELETE",
		Path:        basePath + "/upgrade-requests/{id}",
		Summary:     "Cancel an upgrade request",
		Description: "Delete a pending upgrade request",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.CancelUpgradeRequestInput) (*dto.CancelUpgradeRequestOutput, error) {
		bearer, err := authenticate(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		if err := rosterService.CancelUpgradeRequest(ctx, bearer, input.ID); err != nil {
			return nil, huma.Error502BadGateway("Failed to cancel upgrade request", err)
		}

		out := &dto.CancelUpgradeRequestOutput{}
		out.Body.Success = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roster-upgrade-options",
		Method:      "GET",
		Path:        basePath + "/upgrade-options",
		Summary:     "List upgrade options",
		Description: "Return the rarities reachable from the given one. Upgrades never cross star tiers.",
		Tags:        []string{"Roster"},
	}, func(ctx context.Context, input *dto.UpgradeOptionsInput) (*dto.UpgradeOptionsOutput, error) {
		rarity := gamebackend.Rarity(input.Rarity)
		if !rarity.IsValid() {
			return nil, huma.Error422UnprocessableEntity("Unknown rarity")
		}

		return &dto.UpgradeOptionsOutput{Body: dto.UpgradeOptionsResponse{
			Rarity:  input.Rarity,
			Options: rosterService.UpgradeOptions(rarity),
		}}, nil
	})
}
