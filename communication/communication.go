package communication

// Kind names the operation a Request asks the session for.
type Kind string

const (
	GetBoard    Kind = "board"
	GetNextTile Kind = "tile"
	MakeMove    Kind = "move"
	GetState    Kind = "state"
	Restart     Kind = "restart"
)

// Request is sent by the client. Direction is only set for MakeMove.
type Request struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"type"`
	Direction string `json:"direction,omitempty"`
}

// Reply answers the Request with the same ID. Error is set when the session
// rejected the request; the other fields are then unset.
type Reply struct {
	ID    string `json:"id"`
	Board []int  `json:"board,omitempty"` // 16 cells, row by row
	Tile  int    `json:"tile,omitempty"`
	State string `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}
