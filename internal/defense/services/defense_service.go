package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-warroom/pkg/gamebackend"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// MinNode and MaxNode bound the war map.
	MinNode = 1
	MaxNode = 50

	// MinBattlegroup and MaxBattlegroup bound the battlegroup number.
	MinBattlegroup = 1
	MaxBattlegroup = 3

	// DefenderQuota is the per-member placement limit. The backend
	// enforces it; the local state only tracks usage against it.
	DefenderQuota = 5
)

// BattlegroupState is the mirrored war-defense state of one alliance
// battlegroup: node placements, the placeable champion pool, and the
// member quota usage.
type BattlegroupState struct {
	AllianceID  int64                           `json:"alliance_id"`
	Battlegroup int                             `json:"battlegroup"`
	Placements  map[int]gamebackend.Placement   `json:"placements"`
	Available   []gamebackend.AvailableChampion `json:"available_champions"`
	Members     []gamebackend.BattlegroupMember `json:"members"`
	LoadedAt    time.Time                       `json:"loaded_at"`
}

// DefenderCountFor returns a member's tracked placement count.
func (s *BattlegroupState) DefenderCountFor(gameAccountID int64) int {
	for _, member := range s.Members {
		if member.GameAccountID == gameAccountID {
			return member.DefenderCount
		}
	}
	return 0
}

// DefenseService mirrors battlegroup placement state from the backend
// and keeps it consistent across placements without a full reload per
// mutation. The backend stays authoritative; every mutation goes there
// first and the local state merges the confirmed result.
type DefenseService struct {
	backend *gamebackend.Client

	mu     sync.Mutex
	states map[string]*BattlegroupState
}

// NewDefenseService creates a new defense service
func NewDefenseService(backend *gamebackend.Client) *DefenseService {
	return &DefenseService{
		backend: backend,
		states:  make(map[string]*BattlegroupState),
	}
}

func stateKey(allianceID int64, battlegroup int) string {
	return fmt.Sprintf("%d:%d", allianceID, battlegroup)
}

func validateBattlegroup(battlegroup int) error {
	if battlegroup < MinBattlegroup || battlegroup > MaxBattlegroup {
		return fmt.Errorf("battlegroup must be between %d and %d", MinBattlegroup, MaxBattlegroup)
	}
	return nil
}

func validateNode(node int) error {
	if node < MinNode || node > MaxNode {
		return fmt.Errorf("node number must be between %d and %d", MinNode, MaxNode)
	}
	return nil
}

// Load returns the battlegroup state, fetching it from the backend when
// not yet mirrored or when force is set. Placements, the champion pool
// and the member list are fetched in parallel.
func (s *DefenseService) Load(ctx context.Context, bearer string, allianceID int64, battlegroup int, force bool) (*BattlegroupState, error) {
	tracer := otel.Tracer("go-warroom/defense")
	ctx, span := tracer.Start(ctx, "defense.service.load")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("alliance_id", allianceID),
		attribute.Int("battlegroup", battlegroup),
	)

	if err := validateBattlegroup(battlegroup); err != nil {
		return nil, err
	}

	key := stateKey(allianceID, battlegroup)

	if !force {
		s.mu.Lock()
		if state, ok := s.states[key]; ok {
			snapshot := state.snapshot()
			s.mu.Unlock()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return snapshot, nil
		}
		s.mu.Unlock()
	}

	state, err := s.fetchAll(ctx, bearer, allianceID, battlegroup)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.mu.Lock()
	s.states[key] = state
	snapshot := state.snapshot()
	s.mu.Unlock()

	return snapshot, nil
}

// Place puts a champion on a node through the backend, then merges the
// confirmed placement into the mirrored state: the node's previous
// defender goes back into the champion pool, the placed copy leaves it,
// and both accounts' counts move.
func (s *DefenseService) Place(ctx context.Context, bearer string, allianceID int64, battlegroup int, req *gamebackend.PlaceDefenderRequest) (*BattlegroupState, error) {
	tracer := otel.Tracer("go-warroom/defense")
	ctx, span := tracer.Start(ctx, "defense.service.place")
	defer span.End()

	if err := validateBattlegroup(battlegroup); err != nil {
		return nil, err
	}
	if err := validateNode(req.NodeNumber); err != nil {
		return nil, err
	}
	if err := gamebackend.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("invalid placement request: %w", err)
	}

	placement, err := s.backend.Defense.Place(ctx, bearer, allianceID, battlegroup, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	key := stateKey(allianceID, battlegroup)

	s.mu.Lock()
	state, ok := s.states[key]
	if !ok {
		s.mu.Unlock()
		return s.Load(ctx, bearer, allianceID, battlegroup, true)
	}

	if previous, occupied := state.Placements[placement.NodeNumber]; occupied {
		state.freeOwner(previous)
	}
	state.Placements[placement.NodeNumber] = *placement
	state.takeOwner(placement.ChampionUserID)
	state.shiftMemberCount(placement.GameAccountID, +1)

	snapshot := state.snapshot()
	s.mu.Unlock()
	return snapshot, nil
}

// Remove clears a node through the backend and merges the removal.
// Removing an empty node is a no-op on the mirrored state.
func (s *DefenseService) Remove(ctx context.Context, bearer string, allianceID int64, battlegroup, node int) (*BattlegroupState, error) {
	tracer := otel.Tracer("go-warroom/defense")
	ctx, span := tracer.Start(ctx, "defense.service.remove")
	defer span.End()

	if err := validateBattlegroup(battlegroup); err != nil {
		return nil, err
	}
	if err := validateNode(node); err != nil {
		return nil, err
	}

	if err := s.backend.Defense.RemoveNode(ctx, bearer, allianceID, battlegroup, node); err != nil {
		span.RecordError(err)
		return nil, err
	}

	key := stateKey(allianceID, battlegroup)

	s.mu.Lock()
	state, ok := s.states[key]
	if !ok {
		s.mu.Unlock()
		return s.Load(ctx, bearer, allianceID, battlegroup, true)
	}

	if previous, occupied := state.Placements[node]; occupied {
		delete(state.Placements, node)
		state.freeOwner(previous)
	}

	snapshot := state.snapshot()
	s.mu.Unlock()
	return snapshot, nil
}

// Clear removes every placement of the battlegroup and reloads the
// state from the backend. A full reload beats merging here since every
// count changes at once.
func (s *DefenseService) Clear(ctx context.Context, bearer string, allianceID int64, battlegroup int) (*BattlegroupState, error) {
	tracer := otel.Tracer("go-warroom/defense")
	ctx, span := tracer.Start(ctx, "defense.service.clear")
	defer span.End()

	if err := validateBattlegroup(battlegroup); err != nil {
		return nil, err
	}

	if err := s.backend.Defense.Clear(ctx, bearer, allianceID, battlegroup); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return s.Load(ctx, bearer, allianceID, battlegroup, true)
}

// Invalidate drops the mirrored state of one battlegroup.
func (s *DefenseService) Invalidate(allianceID int64, battlegroup int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, stateKey(allianceID, battlegroup))
}

// fetchAll loads placements, the champion pool and the member list in
// parallel.
func (s *DefenseService) fetchAll(ctx context.Context, bearer string, allianceID int64, battlegroup int) (*BattlegroupState, error) {
	var (
		wg         sync.WaitGroup
		placements []gamebackend.Placement
		available  []gamebackend.AvailableChampion
		members    []gamebackend.BattlegroupMember

		errMu    sync.Mutex
		firstErr error
	)

	record := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		placements, err = s.backend.Defense.GetPlacements(ctx, bearer, allianceID, battlegroup)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		available, err = s.backend.Defense.AvailableChampions(ctx, bearer, allianceID, battlegroup)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		members, err = s.backend.Defense.Members(ctx, bearer, allianceID, battlegroup)
		record(err)
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("failed to load battlegroup state: %w", firstErr)
	}

	state := &BattlegroupState{
		AllianceID:  allianceID,
		Battlegroup: battlegroup,
		Placements:  make(map[int]gamebackend.Placement, len(placements)),
		Available:   available,
		Members:     members,
		LoadedAt:    time.Now(),
	}
	for _, placement := range placements {
		state.Placements[placement.NodeNumber] = placement
	}
	return state, nil
}

// takeOwner removes the placed copy from the available pool. A champion
// entry disappears entirely once its last owner is placed.
func (s *BattlegroupState) takeOwner(championUserID int64) {
	for i := range s.Available {
		owners := s.Available[i].Owners
		for j := range owners {
			if owners[j].ChampionUserID != championUserID {
				continue
			}
			s.Available[i].Owners = append(owners[:j], owners[j+1:]...)
			if len(s.Available[i].Owners) == 0 {
				s.Available = append(s.Available[:i], s.Available[i+1:]...)
			}
			return
		}
	}
}

// freeOwner puts a displaced defender back into the available pool,
// merging into the champion's surviving entry or recreating one, and
// lowers the owning account's count. A recreated entry has no champion
// ID until the next full reload; placements do not carry it.
func (s *BattlegroupState) freeOwner(p gamebackend.Placement) {
	count := s.shiftMemberCount(p.GameAccountID, -1)

	owner := gamebackend.ChampionOwner{
		ChampionUserID: p.ChampionUserID,
		GameAccountID:  p.GameAccountID,
		GamePseudo:     s.memberPseudo(p.GameAccountID),
		Rarity:         p.Rarity,
		DefenderCount:  count,
	}

	for i := range s.Available {
		if s.Available[i].ChampionName == p.ChampionName {
			s.Available[i].Owners = append(s.Available[i].Owners, owner)
			return
		}
	}
	s.Available = append(s.Available, gamebackend.AvailableChampion{
		ChampionName: p.ChampionName,
		Class:        p.ChampionClass,
		ImageURL:     p.ImageURL,
		Owners:       []gamebackend.ChampionOwner{owner},
	})
}

// shiftMemberCount moves a member's defender count by delta, floor 0,
// and returns the new value.
func (s *BattlegroupState) shiftMemberCount(gameAccountID int64, delta int) int {
	for i := range s.Members {
		member := &s.Members[i]
		if member.GameAccountID == gameAccountID {
			member.DefenderCount = clampCount(member.DefenderCount + delta)
			return member.DefenderCount
		}
	}
	return 0
}

func (s *BattlegroupState) memberPseudo(gameAccountID int64) string {
	for _, member := range s.Members {
		if member.GameAccountID == gameAccountID {
			return member.GamePseudo
		}
	}
	return ""
}

func clampCount(count int) int {
	if count < 0 {
		return 0
	}
	return count
}

// snapshot returns a deep copy safe to hand out without the lock.
func (s *BattlegroupState) snapshot() *BattlegroupState {
	out := &BattlegroupState{
		AllianceID:  s.AllianceID,
		Battlegroup: s.Battlegroup,
		Placements:  make(map[int]gamebackend.Placement, len(s.Placements)),
		Available:   make([]gamebackend.AvailableChampion, len(s.Available)),
		Members:     make([]gamebackend.BattlegroupMember, len(s.Members)),
		LoadedAt:    s.LoadedAt,
	}
	for node, placement := range s.Placements {
		out.Placements[node] = placement
	}
	for i, champion := range s.Available {
		copied := champion
		copied.Owners = make([]gamebackend.ChampionOwner, len(champion.Owners))
		copy(copied.Owners, champion.Owners)
		out.Available[i] = copied
	}
	copy(out.Members, s.Members)
	return out
}
