package model

type TeamColor string

const (
	White TeamColor = "white"
	Black TeamColor = "black"
)

// Other returns the opposing side.
func (c TeamColor) Other() TeamColor {
	if c == White {
		return Black
	}
	return White
}

// forward is the row direction pawns of this color advance in.
func (c TeamColor) forward() int {
	if c == White {
		return 1
	}
	return -1
}

func (c TeamColor) pawnHomeRow() int {
	if c == White {
		return 2
	}
	return 7
}

func (c TeamColor) promotionRow() int {
	if c == White {
		return 8
	}
	return 1
}

type Player struct {
	ID    string    `json:"id"`
	Color TeamColor `json:"color"`
}
