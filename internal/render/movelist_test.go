package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmmcquay/hexreport/internal/hex"
)

func TestFormatMoves(t *testing.T) {
	tests := []struct {
		name  string
		match hex.Match
		want  string
	}{
		{
			name:  "empty",
			match: hex.Match{},
			want:  MoveListHeader,
		},
		{
			name:  "one pair",
			match: hex.Match{Moves: []string{"c4", "d5"}, TimeMS: []int{10, 20}},
			want:  MoveListHeader + "1.  c4  d5\t\t10\t20\n",
		},
		{
			name:  "odd length",
			match: hex.Match{Moves: []string{"c4", "d5", "e6"}, TimeMS: []int{10, 20, 30}},
			want: MoveListHeader +
				"1.  c4  d5\t\t10\t20\n" +
				"2.  e6\t\t30\n",
		},
		{
			name:  "three character move pads one space",
			match: hex.Match{Moves: []string{"a10", "b2"}, TimeMS: []int{1, 2}},
			want:  MoveListHeader + "1.  a10 b2\t\t1\t2\n",
		},
		{
			name:  "missing times stay blank",
			match: hex.Match{Moves: []string{"a1", "b2"}},
			want:  MoveListHeader + "1.  a1  b2\t\t\t\n",
		},
		{
			name:  "unrecorded times stay blank",
			match: hex.Match{Moves: []string{"a1", "b2"}, TimeMS: []int{hex.NoTime, 0}},
			want:  MoveListHeader + "1.  a1  b2\t\t\t0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoves(&tt.match))
		})
	}
}

func TestFormatMovesOddLengthLines(t *testing.T) {
	m := &hex.Match{Moves: []string{"a1", "b1", "c1"}, TimeMS: []int{5, 6, 7}}
	lines := strings.Split(strings.TrimSuffix(FormatMoves(m), "\n"), "\n")

	// header, one full pair, one line with the lone move's time
	assert.Len(t, lines, 3)
	assert.Equal(t, "1.  a1  b1\t\t5\t6", lines[1])
	assert.Equal(t, "2.  c1\t\t7", lines[2])
}

func TestFormatMovesNumberPadding(t *testing.T) {
	m := &hex.Match{BoardSide: 11}
	for i := 0; i < 20; i++ {
		m.Moves = append(m.Moves, "a1")
		m.TimeMS = append(m.TimeMS, i)
	}
	lines := strings.Split(FormatMoves(m), "\n")

	assert.True(t, strings.HasPrefix(lines[9], "9.  a1"), lines[9])
	assert.True(t, strings.HasPrefix(lines[10], "10. a1"), lines[10])
}

func TestFormatMoveList(t *testing.T) {
	m := &hex.Match{
		MatchID: "Match_05",
		XID:     "hexai",
		OID:     "dummy",
		Winner:  "O",
		Moves:   []string{"a1"},
		TimeMS:  []int{42},
	}

	want := "Match_05\n" +
		" Black: hexai\n" +
		"+White: dummy\n" +
		MoveListHeader +
		"1.  a1\t\t42\n"
	assert.Equal(t, want, FormatMoveList(m))
}
