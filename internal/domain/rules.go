package domain

import "fmt"

// Rules holds the board geometry and the stacking limit.
type Rules struct {
	Rows           int `yaml:"rows" json:"rows"`
	Columns        int `yaml:"columns" json:"columns"`
	MaxStackHeight int `yaml:"max_stack_height" json:"maxStackHeight"`
}

func DefaultRules() Rules {
	return Rules{
		Rows:           DefaultRows,
		Columns:        DefaultColumns,
		MaxStackHeight: DefaultMaxStackHeight,
	}
}

// Validate checks that the rules describe a playable board: two goal rows,
// two starting rows and at least one cell per row.
func (r Rules) Validate() error {
	if r.Rows < 4 {
		return fmt.Errorf("%w: need at least 4 rows, got %d", ErrInvalidRules, r.Rows)
	}
	if r.Columns < 1 {
		return fmt.Errorf("%w: need at least 1 column, got %d", ErrInvalidRules, r.Columns)
	}
	if r.MaxStackHeight < 1 {
		return fmt.Errorf("%w: max stack height must be positive, got %d", ErrInvalidRules, r.MaxStackHeight)
	}
	return nil
}

// TargetRow is the row a player must reach to win.
func (r Rules) TargetRow(p PlayerID) int {
	if p == Player1 {
		return 0
	}
	return r.Rows - 1
}

// HomeRow is the row behind a player's starting line. The player may never
// enter it; it is the opponent's target.
func (r Rules) HomeRow(p PlayerID) int {
	if p == Player1 {
		return r.Rows - 1
	}
	return 0
}

// StartRow is where a player's pieces stand at the beginning.
func (r Rules) StartRow(p PlayerID) int {
	if p == Player1 {
		return r.Rows - 2
	}
	return 1
}
