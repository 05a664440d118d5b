package domain

// Rejection names why a proposed move or selection was refused.
type Rejection string

const (
	RejectNone        Rejection = ""
	RejectOffBoard    Rejection = "off_board"
	RejectNullMove    Rejection = "null_move"
	RejectNotAdjacent Rejection = "not_adjacent"
	RejectNotOwner    Rejection = "not_owner"
	RejectOwnGoal     Rejection = "own_goal"
	RejectStackFull   Rejection = "stack_full"
	RejectNotOwnPiece Rejection = "not_own_piece"
	RejectGameOver    Rejection = "game_over"
)

var rejectionMessages = map[Rejection]string{
	RejectOffBoard:    "That cell is not on the board.",
	RejectNullMove:    "Pick a different cell to move to.",
	RejectNotAdjacent: "A piece moves exactly one cell, diagonals included.",
	RejectNotOwner:    "You can only move a stack whose top piece is yours.",
	RejectOwnGoal:     "You cannot move onto your own goal line.",
	RejectStackFull:   "Stacks are limited in height; that one is full.",
	RejectNotOwnPiece: "Select one of your own pieces.",
	RejectGameOver:    "The game is over.",
}

// Message is the text shown to the player.
func (r Rejection) Message() string {
	return rejectionMessages[r]
}

// ValidateMove checks a move for the given player without touching the board.
// The first failing rule decides the rejection.
func ValidateMove(board *Board, from, to Coord, player PlayerID) Rejection {
	if !board.InBounds(from.Row, from.Col) || !board.InBounds(to.Row, to.Col) {
		return RejectOffBoard
	}
	if from == to {
		return RejectNullMove
	}
	if chebyshev(from, to) != 1 {
		return RejectNotAdjacent
	}
	if board.TopOwner(from.Row, from.Col) != player {
		return RejectNotOwner
	}
	if to.Row == board.Rules().HomeRow(player) {
		return RejectOwnGoal
	}
	if board.Height(to.Row, to.Col) >= board.Rules().MaxStackHeight {
		return RejectStackFull
	}
	return RejectNone
}

func IsValidMove(board *Board, from, to Coord, player PlayerID) bool {
	return ValidateMove(board, from, to, player) == RejectNone
}

// LegalDestinations lists every cell the top piece at from may move to.
func LegalDestinations(board *Board, from Coord, player PlayerID) []Coord {
	var out []Coord
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			to := Coord{Row: from.Row + dr, Col: from.Col + dc}
			if IsValidMove(board, from, to, player) {
				out = append(out, to)
			}
		}
	}
	return out
}

func chebyshev(a, b Coord) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
