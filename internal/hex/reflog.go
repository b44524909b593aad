package hex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrOutOfTurn is recorded when a log line plays a color out of turn.
var ErrOutOfTurn = errors.New("move out of turn")

// Log is the parsed content of a referee log.
type Log struct {
	Matches []Match
	XWins   int
	OWins   int
}

// ParseLog reads a referee log. The format is line oriented:
//
//	Match_11 anything        starts a match; digits after column 6 give the board side
//	X: hexai by someone      player handshake
//	Xc4 #1 t=512ms           a move, with move number and elapsed time
//	Oa2. #9 t=40ms           a trailing '.' marks the winning move
//	X.                       the player resigns or the match ends
//
// Moves are replayed to find the winner. A match whose moves cannot be
// replayed keeps its record and carries the problem in ReplayErr.
func ParseLog(r io.Reader) (*Log, error) {
	scanner := bufio.NewScanner(r)
	log := &Log{}

	var cur *Match
	finish := func() {
		if cur == nil {
			return
		}
		settleWinner(cur)
		switch cur.Winner {
		case "X":
			log.XWins++
		case "O":
			log.OWins++
		}
		log.Matches = append(log.Matches, *cur)
		cur = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, "M") {
			finish()
			cur = &Match{MatchID: line, BoardSide: headerSide(line)}
			continue
		}
		if cur == nil {
			continue
		}
		if len(line) < 2 || (line[0] != Black && line[0] != White) {
			finish()
			continue
		}

		color := line[0]
		switch {
		case line[1] == ':':
			if len(line) > 3 {
				if color == Black {
					cur.XID = line[3:]
				} else {
					cur.OID = line[3:]
				}
			}
			continue
		case line[1] == '.':
			finish()
			continue
		}

		fields := strings.Fields(line)
		if len(fields[0]) < 3 {
			finish()
			continue
		}
		move := fields[0][1:]
		won := strings.HasSuffix(move, ".")
		move = strings.TrimSuffix(move, ".")

		if color != ColorOf(len(cur.Moves)) && cur.ReplayErr == nil {
			cur.ReplayErr = &MoveError{Index: len(cur.Moves), Move: move, Err: ErrOutOfTurn}
		}
		cur.Moves = append(cur.Moves, move)
		cur.TimeMS = append(cur.TimeMS, moveTime(fields[1:]))

		if won {
			finish()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read referee log: %w", err)
	}
	finish()

	return log, nil
}

// headerSide extracts the board side from a match header line.
func headerSide(line string) int {
	first := strings.Fields(line)
	if len(first) == 0 || len(first[0]) <= 6 {
		return DefaultSide
	}
	rest := strings.TrimLeft(line[6:], " \t")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	side, err := strconv.Atoi(rest[:end])
	if err != nil || side < 3 || side > MaxSide {
		return DefaultSide
	}
	return side
}

// moveTime finds a "t=<n>ms" field. Missing or unreadable times are NoTime.
func moveTime(fields []string) int {
	for _, f := range fields {
		if !strings.HasPrefix(f, "t=") {
			continue
		}
		ms, err := strconv.Atoi(strings.TrimSuffix(f[2:], "ms"))
		if err != nil || ms < 0 {
			return NoTime
		}
		return ms
	}
	return NoTime
}

func settleWinner(m *Match) {
	winner, _, err := ReplayWinner(m)
	if err != nil {
		if m.ReplayErr == nil {
			m.ReplayErr = err
		}
		return
	}
	if winner != None {
		m.Winner = string(winner)
	}
}
