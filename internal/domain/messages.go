package domain

// ClientMessage is what a browser sends over the WebSocket.
type ClientMessage struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

type ServerMessage struct {
	Type    string    `json:"type"`
	GameID  string    `json:"gameId,omitempty"`
	Message string    `json:"message,omitempty"`
	Outcome *Outcome  `json:"outcome,omitempty"`
	State   *Snapshot `json:"state,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
