package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/game"
)

// AnalyzeLogFile rebuilds the aggregate result of an evaluation from the
// CSV log it wrote.
func AnalyzeLogFile(filepath string, maxTurns int) (*Result, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return AnalyzeLog(file, maxTurns)
}

// AnalyzeLog reads rows of answer,state,turns,guesses.
func AnalyzeLog(r io.Reader, maxTurns int) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4

	var games []GameResult
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if record[0] == "answer" {
			// header
			continue
		}
		g, err := parseLogRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		games = append(games, g)
	}
	if maxTurns <= 0 {
		maxTurns = game.DefaultMaxTurns
	}
	var opening alphabet.Word
	if len(games) > 0 && len(games[0].Guesses) > 0 {
		opening = games[0].Guesses[0]
	}
	return newResult(games, maxTurns, opening, 0), nil
}

func parseLogRecord(record []string) (GameResult, error) {
	answer, err := alphabet.ToWord(record[0])
	if err != nil {
		return GameResult{}, err
	}
	state, err := game.ParseState(record[1])
	if err != nil {
		return GameResult{}, err
	}
	turns, err := strconv.Atoi(record[2])
	if err != nil {
		return GameResult{}, err
	}
	g := GameResult{Answer: answer, State: state, Turns: turns}
	for _, s := range strings.Fields(record[3]) {
		w, err := alphabet.ToWord(s)
		if err != nil {
			return GameResult{}, err
		}
		g.Guesses = append(g.Guesses, w)
	}
	return g, nil
}
