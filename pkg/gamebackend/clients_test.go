package gamebackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithBaseURL(server.URL)
}

func TestChampionsList_Pagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/champions", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))
		assert.Equal(t, "mutant", r.URL.Query().Get("class"))
		json.NewEncoder(w).Encode(Page[Champion]{
			Items:       []Champion{{ID: 1, Name: "Nightcrawler", Class: "mutant"}},
			TotalItems:  51,
			TotalPages:  3,
			CurrentPage: 2,
		})
	}))

	page, err := client.Champions.List(context.Background(), "bearer", 2, 25, map[string]string{"class": "mutant"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.TotalPages)
}

func TestChampionsSearch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "night", r.URL.Query().Get("search"))
		json.NewEncoder(w).Encode([]Champion{{ID: 1, Name: "Nightcrawler"}})
	}))

	champions, err := client.Champions.Search(context.Background(), "bearer", "night", 10)
	require.NoError(t, err)
	require.Len(t, champions, 1)
	assert.Equal(t, "Nightcrawler", champions[0].Name)
}

func TestGameAccountsCreateAndList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreateGameAccountRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			json.NewEncoder(w).Encode(GameAccount{ID: 5, GamePseudo: req.GamePseudo, IsPrimary: req.IsPrimary})
		case http.MethodGet:
			json.NewEncoder(w).Encode([]GameAccount{{ID: 5, GamePseudo: "alpha", IsPrimary: true}})
		}
	}))

	created, err := client.GameAccounts.Create(context.Background(), "bearer", &CreateGameAccountRequest{GamePseudo: "alpha", IsPrimary: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	accounts, err := client.GameAccounts.List(context.Background(), "bearer")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsPrimary)
}

func TestAlliancesMembers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alliances/3/members", r.URL.Path)
		json.NewEncoder(w).Encode([]AllianceMember{
			{GameAccount: GameAccount{ID: 5, GamePseudo: "alpha"}, IsOwner: true},
			{GameAccount: GameAccount{ID: 6, GamePseudo: "bravo"}, IsOfficer: true},
		})
	}))

	members, err := client.Alliances.Members(context.Background(), "bearer", 3)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.True(t, members[0].IsOwner)
	assert.True(t, members[1].IsOfficer)
}

func TestAuthExchangeDiscordToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/discord", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "discord-token", body["access_token"])
		json.NewEncoder(w).Encode(TokenExchangeResponse{AccessToken: "jwt", RefreshToken: "refresh", ExpiresIn: 3600})
	}))

	resp, err := client.Auth.ExchangeDiscordToken(context.Background(), "discord-token")
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.AccessToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
}
