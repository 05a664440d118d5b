package domain

import "fmt"

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other player. Empty has no opponent.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return Empty
}

func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

func (p PlayerID) String() string {
	if !p.Valid() {
		return "none"
	}
	return fmt.Sprintf("player %d", int(p))
}

const (
	DefaultRows           = 8
	DefaultColumns        = 5
	DefaultMaxStackHeight = 3
)

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// to represent the game status
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

type WinReason string

const (
	ReasonNone WinReason = ""
	ReasonGoal WinReason = "goal"
	ReasonLock WinReason = "lock"
)

// Phase is the turn controller state.
type Phase string

const (
	AwaitingSelection   Phase = "awaiting_selection"
	AwaitingDestination Phase = "awaiting_destination"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidOperation Error = "invalid board operation"
	ErrInvalidRules     Error = "invalid rules"
	ErrGameNotFound     Error = "game not found"
)
