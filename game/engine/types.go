package engine

import "fmt"

// TileKind represents the kind of a map cell
type TileKind string

const (
	Void     TileKind = "VOID"
	Wall     TileKind = "WALL"
	Floor    TileKind = "FLOOR"
	Start    TileKind = "START"
	Finish   TileKind = "FINISH"
	Object   TileKind = "OBJECT"
	DropZone TileKind = "DROP_ZONE"

	// RobotGlyph is drawn over the robot's position when rendering a game.
	// It is never stored on the board.
	RobotGlyph = "🤖"
)

// tileCodes is the map authoring alphabet. Each character decodes to exactly one kind.
var tileCodes = map[rune]TileKind{
	'0': Void,
	'1': Wall,
	'2': Floor,
	's': Start,
	'f': Finish,
	'o': Object,
	'd': DropZone,
}

var glyphs = map[TileKind]string{
	Void:     "🕳️",
	Wall:     "🟦",
	Floor:    "⬜",
	Start:    RobotGlyph,
	Finish:   "🏁",
	Object:   "📦",
	DropZone: "🎯",
}

// Glyph returns the display glyph for the kind
func (k TileKind) Glyph() string {
	if g, ok := glyphs[k]; ok {
		return g
	}
	return "?"
}

// Valid reports whether k is one of the known tile kinds
func (k TileKind) Valid() bool {
	_, ok := glyphs[k]
	return ok
}

// TileKindFromCode decodes a single map character
func TileKindFromCode(c rune) (TileKind, bool) {
	k, ok := tileCodes[c]
	return k, ok
}

// Tile is one addressable cell of a board. Tiles are never mutated after decoding.
type Tile struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Kind TileKind `json:"kind"`
}

// Position returns the tile's coordinates
func (t Tile) Position() Position {
	return Position{X: t.X, Y: t.Y}
}

func (t Tile) String() string {
	return fmt.Sprintf("Tile(%d, %d, %s)", t.X, t.Y, t.Kind)
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by delta
func (p Position) Add(delta Position) Position {
	return Position{X: p.X + delta.X, Y: p.Y + delta.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is one of the four cardinal directions a robot can move or sense in
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Directions lists the cardinal directions in sensor order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the unit step for the direction. Unknown directions return false.
func (d Direction) Delta() (Position, bool) {
	switch d {
	case Up:
		return Position{X: 0, Y: -1}, true
	case Down:
		return Position{X: 0, Y: 1}, true
	case Left:
		return Position{X: -1, Y: 0}, true
	case Right:
		return Position{X: 1, Y: 0}, true
	}
	return Position{}, false
}

// Valid reports whether d is a cardinal direction
func (d Direction) Valid() bool {
	_, ok := d.Delta()
	return ok
}

// MapLegend documents the map authoring alphabet
const MapLegend = `Maps are created by using the following characters:
0: the void of space
1: a wall
2: a floor tile
s: the starting position
f: the finishing position
o: the object to pick up
d: the drop zone`
