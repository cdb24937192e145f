package services

import (
	"context"
	"fmt"
	"strings"

	"go-warroom/pkg/gamebackend"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// RowStatus classifies one import row in the report.
type RowStatus string

const (
	RowAdded     RowStatus = "added"
	RowUpdated   RowStatus = "updated"
	RowUnchanged RowStatus = "unchanged"
	RowDuplicate RowStatus = "duplicate"
	RowInvalid   RowStatus = "invalid"
	RowFailed    RowStatus = "failed"
)

// RowReport is the per-row outcome of an import.
type RowReport struct {
	Index        int       `json:"index"`
	ChampionName string    `json:"champion_name"`
	Rarity       string    `json:"rarity"`
	Status       RowStatus `json:"status"`
	Reason       string    `json:"reason,omitempty"`
}

// ImportReport summarizes an import run. Valid rows are pushed in one
// atomic batch; a batch failure marks every pushed row failed.
type ImportReport struct {
	Total     int         `json:"total"`
	Added     int         `json:"added"`
	Updated   int         `json:"updated"`
	Unchanged int         `json:"unchanged"`
	Duplicate int         `json:"duplicate"`
	Invalid   int         `json:"invalid"`
	Failed    int         `json:"failed"`
	Rows      []RowReport `json:"rows"`
}

const maxSignature = 200

// RosterService imports and exports rosters against the backend.
type RosterService struct {
	backend *gamebackend.Client
}

// NewRosterService creates a new roster service
func NewRosterService(backend *gamebackend.Client) *RosterService {
	return &RosterService{backend: backend}
}

// List returns a game account's roster entries.
func (s *RosterService) List(ctx context.Context, bearer string, gameAccountID int64) ([]gamebackend.RosterEntry, error) {
	return s.backend.Roster.List(ctx, bearer, gameAccountID)
}

// Export returns a game account's roster as portable rows. Exported
// rows re-import as all-unchanged.
func (s *RosterService) Export(ctx context.Context, bearer string, gameAccountID int64) ([]gamebackend.BulkRosterRow, error) {
	tracer := otel.Tracer("go-warroom/roster")
	ctx, span := tracer.Start(ctx, "roster.service.export")
	defer span.End()

	span.SetAttributes(attribute.Int64("game_account_id", gameAccountID))

	entries, err := s.backend.Roster.List(ctx, bearer, gameAccountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := make([]gamebackend.BulkRosterRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, gamebackend.BulkRosterRow{
			ChampionName: entry.ChampionName,
			Rarity:       entry.Rarity,
			Signature:    entry.Signature,
		})
	}
	return rows, nil
}

// Import validates and applies roster rows for a game account. Rows
// that fail validation are reported and skipped; the surviving rows go
// upstream in one atomic batch. A batch rejection marks every pushed
// row failed; the report itself is still returned. Duplicates are keyed
// on the champion name alone (case-insensitive, keep-last), since a
// roster entry is unique per (game account, champion) upstream.
func (s *RosterService) Import(ctx context.Context, bearer string, gameAccountID int64, rows []gamebackend.BulkRosterRow) (*ImportReport, error) {
	tracer := otel.Tracer("go-warroom/roster")
	ctx, span := tracer.Start(ctx, "roster.service.import")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("game_account_id", gameAccountID),
		attribute.Int("rows", len(rows)),
	)

	report := &ImportReport{
		Total: len(rows),
		Rows:  make([]RowReport, len(rows)),
	}

	// Pass 1: per-row validation.
	for i, row := range rows {
		report.Rows[i] = RowReport{
			Index:        i,
			ChampionName: row.ChampionName,
			Rarity:       string(row.Rarity),
		}
		if reason := validateRow(row); reason != "" {
			report.Rows[i].Status = RowInvalid
			report.Rows[i].Reason = reason
		}
	}

	// Pass 2: duplicates keep the last occurrence per champion.
	lastIndex := make(map[string]int)
	for i, row := range rows {
		if report.Rows[i].Status == RowInvalid {
			continue
		}
		key := rowKey(row.ChampionName)
		if prev, seen := lastIndex[key]; seen {
			report.Rows[prev].Status = RowDuplicate
			report.Rows[prev].Reason = "superseded by a later row for the same champion"
		}
		lastIndex[key] = i
	}

	// Pass 3: classify against the current roster.
	existing, err := s.backend.Roster.List(ctx, bearer, gameAccountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	current := make(map[string]gamebackend.RosterEntry, len(existing))
	for _, entry := range existing {
		current[rowKey(entry.ChampionName)] = entry
	}

	var batch []gamebackend.BulkRosterRow
	var batchIndexes []int
	for i, row := range rows {
		if report.Rows[i].Status != "" {
			continue
		}
		entry, owned := current[rowKey(row.ChampionName)]
		switch {
		case !owned:
			report.Rows[i].Status = RowAdded
		case entry.Rarity == row.Rarity && entry.Signature == row.Signature:
			report.Rows[i].Status = RowUnchanged
			continue
		default:
			report.Rows[i].Status = RowUpdated
		}
		batch = append(batch, row)
		batchIndexes = append(batchIndexes, i)
	}

	// Pass 4: one atomic push for everything that changes.
	if len(batch) > 0 {
		_, err := s.backend.Roster.BulkUpsert(ctx, bearer, &gamebackend.BulkUpsertRequest{
			GameAccountID: gameAccountID,
			Entries:       batch,
		})
		if err != nil {
			span.RecordError(err)
			reason := "batch rejected: " + err.Error()
			for _, i := range batchIndexes {
				report.Rows[i].Status = RowFailed
				report.Rows[i].Reason = reason
			}
		}
	}

	for _, row := range report.Rows {
		switch row.Status {
		case RowAdded:
			report.Added++
		case RowUpdated:
			report.Updated++
		case RowUnchanged:
			report.Unchanged++
		case RowDuplicate:
			report.Duplicate++
		case RowInvalid:
			report.Invalid++
		case RowFailed:
			report.Failed++
		}
	}

	return report, nil
}

// UpgradeOptions returns the rarities an entry can be raised to. Empty
// at the top of a star tier; upgrades never cross star tiers.
func (s *RosterService) UpgradeOptions(rarity gamebackend.Rarity) []gamebackend.Rarity {
	return rarity.UpgradeOptions()
}

// Upgrade raises a roster entry to the given rarity.
func (s *RosterService) Upgrade(ctx context.Context, bearer string, id int64, rarity gamebackend.Rarity) (*gamebackend.RosterEntry, error) {
	if !rarity.IsValid() {
		return nil, fmt.Errorf("unknown rarity %q", rarity)
	}
	return s.backend.Roster.Upgrade(ctx, bearer, id, rarity)
}

// RequestUpgrade files a pending upgrade ask for a roster entry.
func (s *RosterService) RequestUpgrade(ctx context.Context, bearer string, championUserID int64, requested gamebackend.Rarity) (*gamebackend.UpgradeRequest, error) {
	if !requested.IsValid() {
		return nil, fmt.Errorf("unknown rarity %q", requested)
	}
	return s.backend.Roster.CreateUpgradeRequest(ctx, bearer, championUserID, requested)
}

// ListUpgradeRequests returns an alliance's pending upgrade requests.
func (s *RosterService) ListUpgradeRequests(ctx context.Context, bearer string, allianceID int64) ([]gamebackend.UpgradeRequest, error) {
	return s.backend.Roster.ListUpgradeRequests(ctx, bearer, allianceID)
}

// CancelUpgradeRequest deletes a pending upgrade request.
func (s *RosterService) CancelUpgradeRequest(ctx context.Context, bearer string, id int64) error {
	return s.backend.Roster.CancelUpgradeRequest(ctx, bearer, id)
}

func validateRow(row gamebackend.BulkRosterRow) string {
	if strings.TrimSpace(row.ChampionName) == "" {
		return "champion name is required"
	}
	if !row.Rarity.IsValid() {
		return "rarity must look like 6r5 or 7r3"
	}
	if row.Signature < 0 || row.Signature > maxSignature {
		return "signature must be between 0 and 200"
	}
	return ""
}

func rowKey(championName string) string {
	return strings.ToLower(strings.TrimSpace(championName))
}
