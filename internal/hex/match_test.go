package hex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchUnmarshalBoardSide(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{name: "number", data: `{"board_side":7}`, want: 7},
		{name: "string", data: `{"board_side":"11"}`, want: 11},
		{name: "missing", data: `{"match_id":"m"}`, want: 0},
		{name: "null", data: `{"board_side":null}`, want: 0},
		{name: "empty string", data: `{"board_side":""}`, want: 0},
		{name: "not a number", data: `{"board_side":"big"}`, wantErr: true},
		{name: "bool", data: `{"board_side":true}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Match
			err := json.Unmarshal([]byte(tt.data), &m)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.BoardSide)
		})
	}
}

func TestMatchUnmarshalKeepsOtherFields(t *testing.T) {
	data := `{"board_side":"5","match_id":"Match_05","x_id":"alpha","o_id":"beta",
		"winner":"O","move":["a1","b2"],"time_ms":[10,12]}`

	var m Match
	require.NoError(t, json.Unmarshal([]byte(data), &m))
	assert.Equal(t, Match{
		BoardSide: 5,
		MatchID:   "Match_05",
		XID:       "alpha",
		OID:       "beta",
		Winner:    "O",
		Moves:     []string{"a1", "b2"},
		TimeMS:    []int{10, 12},
	}, m)
}

func TestMatchApplyDefaults(t *testing.T) {
	m := Match{}
	m.ApplyDefaults()
	assert.Equal(t, DefaultSide, m.BoardSide)

	m = Match{BoardSide: 3}
	m.ApplyDefaults()
	assert.Equal(t, 3, m.BoardSide)
}

func TestMatchTime(t *testing.T) {
	m := Match{Moves: []string{"a1", "b2", "c3"}, TimeMS: []int{0, NoTime}}

	ms, ok := m.Time(0)
	assert.True(t, ok)
	assert.Equal(t, 0, ms)

	_, ok = m.Time(1)
	assert.False(t, ok)
	_, ok = m.Time(2)
	assert.False(t, ok)
	_, ok = m.Time(-1)
	assert.False(t, ok)
}

func TestBitboardClone(t *testing.T) {
	b, err := BuildBitboard(&Match{BoardSide: 3, Moves: []string{"a1", "b2"}})
	require.NoError(t, err)

	c := b.Clone()
	assert.Equal(t, b, c)
	c.XRow[0] = 0
	c.OCol[1] = 0
	assert.Equal(t, byte(Black), b.At(0, 0))
	assert.Equal(t, byte(White), b.At(1, 1))

	var nilBoard *Bitboard
	assert.Nil(t, nilBoard.Clone())
}
