package domain

// Verdict is a terminal result.
type Verdict struct {
	Winner PlayerID
	Reason WinReason
}

// DetectOutcome inspects the board after a move. Goal checks scan whole
// stacks, so a buried piece on the target row still counts.
//
// The lock check only asks whether a player owns some top piece; it does not
// check that the piece has a legal destination.
func DetectOutcome(board *Board) (Verdict, bool) {
	rules := board.Rules()

	for _, p := range []PlayerID{Player1, Player2} {
		row := rules.TargetRow(p)
		for c := 0; c < rules.Columns; c++ {
			if board.Contains(row, c, p) {
				return Verdict{Winner: p, Reason: ReasonGoal}, true
			}
		}
	}

	p1Movable, p2Movable := false, false
	for r := 0; r < rules.Rows; r++ {
		for c := 0; c < rules.Columns; c++ {
			switch board.TopOwner(r, c) {
			case Player1:
				p1Movable = true
			case Player2:
				p2Movable = true
			}
		}
	}

	if !p2Movable {
		return Verdict{Winner: Player1, Reason: ReasonLock}, true
	}
	if !p1Movable {
		return Verdict{Winner: Player2, Reason: ReasonLock}, true
	}
	return Verdict{}, false
}
