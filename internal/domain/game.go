package domain

import "fmt"

// Game is the turn controller. It owns the board, the active player, the
// pending selection and the terminal status. It is not safe for concurrent
// use; the session that owns it serializes access.
type Game struct {
	Board         *Board
	CurrentPlayer PlayerID
	Status        GameStatus
	Winner        PlayerID
	Reason        WinReason
	MoveCount     int
	selected      *Coord
}

func NewGame(rules Rules) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return NewGameWithBoard(NewBoard(rules), Player1), nil
}

// NewGameWithBoard starts a game from an arbitrary position.
func NewGameWithBoard(board *Board, current PlayerID) *Game {
	return &Game{
		Board:         board,
		CurrentPlayer: current,
		Status:        StatusInProgress,
		Winner:        Empty,
	}
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusFinished
}

func (g *Game) Phase() Phase {
	if g.selected != nil {
		return AwaitingDestination
	}
	return AwaitingSelection
}

// Selected returns the pending source cell, if any.
func (g *Game) Selected() (Coord, bool) {
	if g.selected == nil {
		return Coord{}, false
	}
	return *g.selected, true
}

// SelectOrMove feeds one clicked cell into the state machine.
func (g *Game) SelectOrMove(row, col int) Outcome {
	if g.IsFinished() {
		return g.gameOverOutcome(nil, nil)
	}

	cell := Coord{Row: row, Col: col}
	if g.selected == nil {
		return g.selectCell(cell)
	}

	from := *g.selected
	g.selected = nil

	if rej := ValidateMove(g.Board, from, cell, g.CurrentPlayer); rej != RejectNone {
		return rejected(rej)
	}

	if err := g.Board.MovePieceTop(from.Row, from.Col, cell.Row, cell.Col); err != nil {
		// validation passed, so the board disagreeing is a programming error
		panic(fmt.Sprintf("apply validated move %v -> %v: %v", from, cell, err))
	}
	g.MoveCount++
	g.CurrentPlayer = g.CurrentPlayer.Opponent()

	if verdict, over := DetectOutcome(g.Board); over {
		g.Status = StatusFinished
		g.Winner = verdict.Winner
		g.Reason = verdict.Reason
		return g.gameOverOutcome(&from, &cell)
	}

	return Outcome{
		Kind:    OutcomeMoved,
		From:    &from,
		To:      &cell,
		Message: fmt.Sprintf("Player %d to move.", int(g.CurrentPlayer)),
	}
}

func (g *Game) selectCell(cell Coord) Outcome {
	if !g.Board.InBounds(cell.Row, cell.Col) {
		return rejected(RejectOffBoard)
	}
	if g.Board.TopOwner(cell.Row, cell.Col) != g.CurrentPlayer {
		return rejected(RejectNotOwnPiece)
	}
	g.selected = &cell
	return Outcome{
		Kind:    OutcomeSelected,
		Cell:    &cell,
		Message: fmt.Sprintf("Selected piece at %v. Choose a destination.", cell),
	}
}

func (g *Game) gameOverOutcome(from, to *Coord) Outcome {
	return Outcome{
		Kind:    OutcomeGameOver,
		From:    from,
		To:      to,
		Winner:  g.Winner,
		Reason:  g.Reason,
		Message: VictoryMessage(g.Winner, g.Reason),
	}
}

// Snapshot returns a detached copy of the visible state.
func (g *Game) Snapshot() Snapshot {
	rules := g.Board.Rules()
	s := Snapshot{
		Rows:           rules.Rows,
		Columns:        rules.Columns,
		MaxStackHeight: rules.MaxStackHeight,
		Board:          g.Board.Cells(),
		CurrentPlayer:  g.CurrentPlayer,
		Status:         g.Status,
		Winner:         g.Winner,
		Reason:         g.Reason,
		Phase:          g.Phase(),
		MoveCount:      g.MoveCount,
	}
	if g.selected != nil {
		sel := *g.selected
		s.Selected = &sel
	}
	return s
}

// VictoryMessage is the banner shown when a game ends.
func VictoryMessage(winner PlayerID, reason WinReason) string {
	if reason == ReasonLock {
		return fmt.Sprintf("Player %d locks the opponent out and wins!", int(winner))
	}
	return fmt.Sprintf("Player %d wins by reaching the goal line!", int(winner))
}
