package game

import "github.com/lithammer/shortuuid/v4"

// newGameID returns a short, URL-safe unique ID for a game.
func newGameID() string {
	return shortuuid.New()
}
