package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go-warroom/pkg/gamebackend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the battlegroup endpoints from mutable fixtures.
type fakeBackend struct {
	placements []gamebackend.Placement
	available  []gamebackend.AvailableChampion
	members    []gamebackend.BattlegroupMember

	placeStatus   int
	membersStatus int
	nextID        int64
	loadCalls     atomic.Int32
}

// championName resolves the denormalized name the backend would return
// on a confirmed placement.
func championName(championUserID int64) string {
	if championUserID == 500 {
		return "Doom"
	}
	return "Nightcrawler"
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /alliances/1/defense/bg/1", func(w http.ResponseWriter, r *http.Request) {
		f.loadCalls.Add(1)
		json.NewEncoder(w).Encode(f.placements)
	})
	mux.HandleFunc("GET /alliances/1/defense/bg/1/available-champions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.available)
	})
	mux.HandleFunc("GET /alliances/1/defense/bg/1/members", func(w http.ResponseWriter, r *http.Request) {
		if f.membersStatus != 0 {
			w.WriteHeader(f.membersStatus)
			w.Write([]byte(`{"message":"backend error"}`))
			return
		}
		json.NewEncoder(w).Encode(f.members)
	})
	mux.HandleFunc("POST /alliances/1/defense/bg/1/place", func(w http.ResponseWriter, r *http.Request) {
		if f.placeStatus != 0 {
			w.WriteHeader(f.placeStatus)
			w.Write([]byte(`{"message":"quota exceeded"}`))
			return
		}
		var req gamebackend.PlaceDefenderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.nextID++
		json.NewEncoder(w).Encode(gamebackend.Placement{
			ID:             f.nextID,
			AllianceID:     1,
			Battlegroup:    1,
			NodeNumber:     req.NodeNumber,
			ChampionUserID: req.ChampionUserID,
			GameAccountID:  req.GameAccountID,
			ChampionName:   championName(req.ChampionUserID),
			Rarity:         gamebackend.Rarity7R1,
		})
	})
	mux.HandleFunc("DELETE /alliances/1/defense/bg/1/node/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /alliances/1/defense/bg/1/clear", func(w http.ResponseWriter, r *http.Request) {
		f.placements = nil
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newDefenseTest(t *testing.T, fixture *fakeBackend) *DefenseService {
	t.Helper()
	server := httptest.NewServer(fixture.handler())
	t.Cleanup(server.Close)
	return NewDefenseService(gamebackend.NewClientWithBaseURL(server.URL))
}

// baseFixture holds one placed defender (Doom, the only copy, so Doom is
// absent from the pool) and a two-owner Nightcrawler still placeable.
func baseFixture() *fakeBackend {
	return &fakeBackend{
		placements: []gamebackend.Placement{
			{ID: 1, AllianceID: 1, Battlegroup: 1, NodeNumber: 10, ChampionUserID: 500, GameAccountID: 100, ChampionName: "Doom", Rarity: gamebackend.Rarity6R5},
		},
		available: []gamebackend.AvailableChampion{
			{
				ChampionID:   7,
				ChampionName: "Nightcrawler",
				Owners: []gamebackend.ChampionOwner{
					{ChampionUserID: 501, GameAccountID: 101, GamePseudo: "bravo", Rarity: gamebackend.Rarity7R1, DefenderCount: 0},
					{ChampionUserID: 502, GameAccountID: 102, GamePseudo: "charlie", Rarity: gamebackend.Rarity7R3, DefenderCount: 0},
				},
			},
		},
		members: []gamebackend.BattlegroupMember{
			{GameAccountID: 100, GamePseudo: "alpha", DefenderCount: 1},
			{GameAccountID: 101, GamePseudo: "bravo", DefenderCount: 0},
			{GameAccountID: 102, GamePseudo: "charlie", DefenderCount: 0},
		},
	}
}

func findChampion(state *BattlegroupState, name string) *gamebackend.AvailableChampion {
	for i := range state.Available {
		if state.Available[i].ChampionName == name {
			return &state.Available[i]
		}
	}
	return nil
}

// assertInvariants checks the structural battlegroup invariants: at most
// one placement per node, a champion copy on at most one node, and no
// account above the defender quota.
func assertInvariants(t *testing.T, state *BattlegroupState) {
	t.Helper()

	copies := make(map[int64]int)
	perAccount := make(map[int64]int)
	for node, placement := range state.Placements {
		assert.Equal(t, node, placement.NodeNumber)
		copies[placement.ChampionUserID]++
		perAccount[placement.GameAccountID]++
	}
	for championUserID, count := range copies {
		assert.Equalf(t, 1, count, "champion copy %d placed on %d nodes", championUserID, count)
	}
	for accountID, count := range perAccount {
		assert.LessOrEqualf(t, count, DefenderQuota, "account %d over quota", accountID)
		assert.LessOrEqual(t, state.DefenderCountFor(accountID), DefenderQuota)
	}
}

func TestLoad_MirrorsBattlegroup(t *testing.T) {
	fixture := baseFixture()
	service := newDefenseTest(t, fixture)

	state, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	assert.Len(t, state.Placements, 1)
	assert.Equal(t, int64(500), state.Placements[10].ChampionUserID)
	assert.Len(t, state.Available, 1)
	assert.Len(t, state.Members, 3)

	// Second load hits the mirror, not the backend.
	_, err = service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fixture.loadCalls.Load())

	// Force reload goes back to the backend.
	_, err = service.Load(context.Background(), "bearer", 1, 1, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fixture.loadCalls.Load())
}

func TestLoad_PartialFetchFailure(t *testing.T) {
	fixture := baseFixture()
	fixture.membersStatus = http.StatusInternalServerError
	service := newDefenseTest(t, fixture)

	// One of the three parallel fetches failing surfaces a single load
	// error and caches nothing.
	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.Error(t, err)

	service.mu.Lock()
	assert.Empty(t, service.states)
	service.mu.Unlock()

	// A later healthy load starts clean.
	fixture.membersStatus = 0
	state, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)
	assert.Len(t, state.Members, 3)
}

func TestLoad_InvalidBattlegroup(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 0, false)
	assert.Error(t, err)
	_, err = service.Load(context.Background(), "bearer", 1, 4, false)
	assert.Error(t, err)
}

func TestPlace_RemovesOwnerFromPool(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	// Nightcrawler has two owners. Placing one of them leaves the
	// champion in the pool with exactly the other owner.
	state, err := service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{
		NodeNumber:     20,
		ChampionUserID: 501,
		GameAccountID:  101,
	})
	require.NoError(t, err)

	assert.Len(t, state.Placements, 2)
	assert.Equal(t, int64(501), state.Placements[20].ChampionUserID)

	nightcrawler := findChampion(state, "Nightcrawler")
	require.NotNil(t, nightcrawler)
	require.Len(t, nightcrawler.Owners, 1)
	assert.Equal(t, int64(502), nightcrawler.Owners[0].ChampionUserID)

	assert.Equal(t, 1, state.DefenderCountFor(101))
	assert.Equal(t, 1, state.DefenderCountFor(100))
	assertInvariants(t, state)
}

func TestPlace_LastOwnerDropsChampionEntry(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	_, err = service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{
		NodeNumber: 20, ChampionUserID: 501, GameAccountID: 101,
	})
	require.NoError(t, err)

	state, err := service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{
		NodeNumber: 21, ChampionUserID: 502, GameAccountID: 102,
	})
	require.NoError(t, err)

	assert.Nil(t, findChampion(state, "Nightcrawler"))
	assert.Equal(t, 1, state.DefenderCountFor(101))
	assert.Equal(t, 1, state.DefenderCountFor(102))
	assertInvariants(t, state)
}

func TestPlace_DisplacesPreviousDefender(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	// Node 10 is held by Doom's only copy. Overwriting the node frees
	// that copy back into the pool under a recreated champion entry.
	state, err := service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{
		NodeNumber:     10,
		ChampionUserID: 501,
		GameAccountID:  101,
	})
	require.NoError(t, err)

	assert.Len(t, state.Placements, 1)
	assert.Equal(t, int64(501), state.Placements[10].ChampionUserID)

	doom := findChampion(state, "Doom")
	require.NotNil(t, doom)
	require.Len(t, doom.Owners, 1)
	assert.Equal(t, int64(500), doom.Owners[0].ChampionUserID)
	assert.Equal(t, "alpha", doom.Owners[0].GamePseudo)

	assert.Equal(t, 0, state.DefenderCountFor(100))
	assert.Equal(t, 1, state.DefenderCountFor(101))
	assertInvariants(t, state)
}

func TestPlace_InvalidNode(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{NodeNumber: 0, ChampionUserID: 501, GameAccountID: 101})
	assert.Error(t, err)
	_, err = service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{NodeNumber: 51, ChampionUserID: 501, GameAccountID: 101})
	assert.Error(t, err)
}

func TestPlace_BackendRejection(t *testing.T) {
	fixture := baseFixture()
	fixture.placeStatus = http.StatusConflict
	service := newDefenseTest(t, fixture)

	before, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	_, err = service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{
		NodeNumber:     20,
		ChampionUserID: 501,
		GameAccountID:  101,
	})
	require.Error(t, err)
	assert.True(t, gamebackend.IsStatus(err, http.StatusConflict))

	// The rejection leaves the mirror untouched.
	after, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, before.Placements, after.Placements)
	assert.Equal(t, before.Available, after.Available)
	assert.Equal(t, before.Members, after.Members)
}

func TestRemove_FreesOwnerIntoPool(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	state, err := service.Remove(context.Background(), "bearer", 1, 1, 10)
	require.NoError(t, err)

	assert.Empty(t, state.Placements)

	doom := findChampion(state, "Doom")
	require.NotNil(t, doom)
	require.Len(t, doom.Owners, 1)
	assert.Equal(t, int64(500), doom.Owners[0].ChampionUserID)
	assert.Equal(t, 0, state.DefenderCountFor(100))
}

func TestRemove_MergesIntoSurvivingEntry(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	_, err = service.Place(context.Background(), "bearer", 1, 1, &gamebackend.PlaceDefenderRequest{
		NodeNumber: 20, ChampionUserID: 501, GameAccountID: 101,
	})
	require.NoError(t, err)

	// Removing the placement puts the copy back under the champion
	// entry the other owner kept alive.
	state, err := service.Remove(context.Background(), "bearer", 1, 1, 20)
	require.NoError(t, err)

	nightcrawler := findChampion(state, "Nightcrawler")
	require.NotNil(t, nightcrawler)
	assert.Len(t, nightcrawler.Owners, 2)
	assert.Equal(t, 0, state.DefenderCountFor(101))
	assertInvariants(t, state)
}

func TestRemove_EmptyNodeIsIdempotent(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	state, err := service.Remove(context.Background(), "bearer", 1, 1, 30)
	require.NoError(t, err)
	assert.Len(t, state.Placements, 1)

	// Counts never go negative even when removals outrun placements,
	// and a freed copy is never re-inserted twice.
	state, err = service.Remove(context.Background(), "bearer", 1, 1, 10)
	require.NoError(t, err)
	state, err = service.Remove(context.Background(), "bearer", 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, state.DefenderCountFor(100))
	doom := findChampion(state, "Doom")
	require.NotNil(t, doom)
	assert.Len(t, doom.Owners, 1)
	assertInvariants(t, state)
}

func TestClear_ReloadsFromBackend(t *testing.T) {
	fixture := baseFixture()
	service := newDefenseTest(t, fixture)

	_, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	state, err := service.Clear(context.Background(), "bearer", 1, 1)
	require.NoError(t, err)
	assert.Empty(t, state.Placements)
}

func TestSnapshotIsolation(t *testing.T) {
	service := newDefenseTest(t, baseFixture())

	first, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)

	// Mutating a returned snapshot must not leak into the mirror.
	first.Placements[49] = gamebackend.Placement{NodeNumber: 49}
	first.Members[0].DefenderCount = 99
	first.Available[0].Owners[0].DefenderCount = 99

	second, err := service.Load(context.Background(), "bearer", 1, 1, false)
	require.NoError(t, err)
	assert.Len(t, second.Placements, 1)
	assert.Equal(t, 1, second.DefenderCountFor(100))
	assert.Equal(t, 0, second.Available[0].Owners[0].DefenderCount)
}
