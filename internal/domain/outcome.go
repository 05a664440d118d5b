package domain

type OutcomeKind string

const (
	OutcomeSelected OutcomeKind = "selected"
	OutcomeMoved    OutcomeKind = "moved"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeGameOver OutcomeKind = "game_over"
)

// Outcome is the result of one SelectOrMove call. Rejections are ordinary
// values here; only misuse of the board surfaces as an error.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Cell      *Coord      `json:"cell,omitempty"`
	From      *Coord      `json:"from,omitempty"`
	To        *Coord      `json:"to,omitempty"`
	Rejection Rejection   `json:"rejection,omitempty"`
	Winner    PlayerID    `json:"winner,omitempty"`
	Reason    WinReason   `json:"reason,omitempty"`
	Message   string      `json:"message,omitempty"`
}

func rejected(r Rejection) Outcome {
	return Outcome{Kind: OutcomeRejected, Rejection: r, Message: r.Message()}
}

// Snapshot is the read-only state handed to renderers.
type Snapshot struct {
	Rows           int        `json:"rows"`
	Columns        int        `json:"columns"`
	MaxStackHeight int        `json:"maxStackHeight"`
	Board          [][][]int  `json:"board"`
	CurrentPlayer  PlayerID   `json:"currentPlayer"`
	Status         GameStatus `json:"status"`
	Winner         PlayerID   `json:"winner,omitempty"`
	Reason         WinReason  `json:"reason,omitempty"`
	Phase          Phase      `json:"phase"`
	Selected       *Coord     `json:"selected,omitempty"`
	MoveCount      int        `json:"moveCount"`
}
