package gamebackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
		wantErr bool
	}{
		{
			name:    "valid bulk row",
			payload: &BulkRosterRow{ChampionName: "Doom", Rarity: "7r2", Signature: 20},
			wantErr: false,
		},
		{
			name:    "unknown rarity tier",
			payload: &BulkRosterRow{ChampionName: "Doom", Rarity: "6r1", Signature: 0},
			wantErr: true,
		},
		{
			name:    "signature above cap",
			payload: &BulkRosterRow{ChampionName: "Doom", Rarity: "7r2", Signature: 201},
			wantErr: true,
		},
		{
			name:    "valid placement",
			payload: &PlaceDefenderRequest{NodeNumber: 50, ChampionUserID: 1, GameAccountID: 2},
			wantErr: false,
		},
		{
			name:    "node off the map",
			payload: &PlaceDefenderRequest{NodeNumber: 51, ChampionUserID: 1, GameAccountID: 2},
			wantErr: true,
		},
		{
			name:    "missing champion copy",
			payload: &PlaceDefenderRequest{NodeNumber: 1, GameAccountID: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
