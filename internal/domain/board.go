package domain

import "fmt"

// Board is a grid of stacks. A stack lists owners bottom to top; an empty
// cell is a nil stack, never a zero-length one.
type Board struct {
	rules Rules
	cells [][][]PlayerID
}

// NewBoard returns a board with the starting layout: Player 2 fills row 1,
// Player 1 fills row Rows-2, one piece per cell.
func NewBoard(rules Rules) *Board {
	b := newEmptyBoard(rules)
	for c := 0; c < rules.Columns; c++ {
		b.cells[rules.StartRow(Player2)][c] = []PlayerID{Player2}
		b.cells[rules.StartRow(Player1)][c] = []PlayerID{Player1}
	}
	return b
}

func newEmptyBoard(rules Rules) *Board {
	cells := make([][][]PlayerID, rules.Rows)
	for i := range cells {
		cells[i] = make([][]PlayerID, rules.Columns)
	}
	return &Board{rules: rules, cells: cells}
}

func (b *Board) Rules() Rules {
	return b.rules
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rules.Rows && col >= 0 && col < b.rules.Columns
}

// TopOwner returns the owner of the topmost piece, or Empty.
func (b *Board) TopOwner(row, col int) PlayerID {
	if !b.InBounds(row, col) {
		return Empty
	}
	stack := b.cells[row][col]
	if len(stack) == 0 {
		return Empty
	}
	return stack[len(stack)-1]
}

func (b *Board) Height(row, col int) int {
	if !b.InBounds(row, col) {
		return 0
	}
	return len(b.cells[row][col])
}

// Stack returns a copy of the cell's stack, bottom first.
func (b *Board) Stack(row, col int) []PlayerID {
	if !b.InBounds(row, col) || len(b.cells[row][col]) == 0 {
		return nil
	}
	out := make([]PlayerID, len(b.cells[row][col]))
	copy(out, b.cells[row][col])
	return out
}

// Contains reports whether the player owns any piece in the stack, buried or not.
func (b *Board) Contains(row, col int, player PlayerID) bool {
	if !b.InBounds(row, col) {
		return false
	}
	for _, owner := range b.cells[row][col] {
		if owner == player {
			return true
		}
	}
	return false
}

// MovePieceTop pops the source top and pushes it onto the destination. It
// knows nothing about adjacency or turns; callers validate first.
func (b *Board) MovePieceTop(fromRow, fromCol, toRow, toCol int) error {
	if !b.InBounds(fromRow, fromCol) {
		return fmt.Errorf("%w: source (%d, %d) is off the board", ErrInvalidOperation, fromRow, fromCol)
	}
	if !b.InBounds(toRow, toCol) {
		return fmt.Errorf("%w: destination (%d, %d) is off the board", ErrInvalidOperation, toRow, toCol)
	}
	if fromRow == toRow && fromCol == toCol {
		return fmt.Errorf("%w: source and destination are the same cell", ErrInvalidOperation)
	}
	src := b.cells[fromRow][fromCol]
	if len(src) == 0 {
		return fmt.Errorf("%w: source (%d, %d) is empty", ErrInvalidOperation, fromRow, fromCol)
	}
	if len(b.cells[toRow][toCol]) >= b.rules.MaxStackHeight {
		return fmt.Errorf("%w: destination (%d, %d) is full", ErrInvalidOperation, toRow, toCol)
	}

	piece := src[len(src)-1]
	if len(src) == 1 {
		b.cells[fromRow][fromCol] = nil
	} else {
		b.cells[fromRow][fromCol] = src[:len(src)-1]
	}
	b.cells[toRow][toCol] = append(b.cells[toRow][toCol], piece)
	return nil
}

// Place appends pieces to a cell, bottom first. Used to set up positions.
func (b *Board) Place(row, col int, owners ...PlayerID) error {
	if !b.InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d) is off the board", ErrInvalidOperation, row, col)
	}
	if len(b.cells[row][col])+len(owners) > b.rules.MaxStackHeight {
		return fmt.Errorf("%w: (%d, %d) would exceed height %d", ErrInvalidOperation, row, col, b.rules.MaxStackHeight)
	}
	for _, o := range owners {
		if !o.Valid() {
			return fmt.Errorf("%w: cannot place %v", ErrInvalidOperation, o)
		}
	}
	b.cells[row][col] = append(b.cells[row][col], owners...)
	if len(b.cells[row][col]) == 0 {
		b.cells[row][col] = nil
	}
	return nil
}

func (b *Board) Clear(row, col int) {
	if b.InBounds(row, col) {
		b.cells[row][col] = nil
	}
}

// this creates a deep copy of the board
func (b *Board) Copy() *Board {
	nb := newEmptyBoard(b.rules)
	for r := range b.cells {
		for c := range b.cells[r] {
			nb.cells[r][c] = b.Stack(r, c)
		}
	}
	return nb
}

// Cells projects the board to plain ints for rendering; empty cells are
// zero-length slices so they encode as [] rather than null.
func (b *Board) Cells() [][][]int {
	out := make([][][]int, len(b.cells))
	for r := range b.cells {
		out[r] = make([][]int, len(b.cells[r]))
		for c, stack := range b.cells[r] {
			ints := make([]int, len(stack))
			for i, owner := range stack {
				ints[i] = int(owner)
			}
			out[r][c] = ints
		}
	}
	return out
}
