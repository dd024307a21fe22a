package engine

import (
	"strings"
)

// Board is a decoded map: the tile grid plus landmark positions found while decoding
type Board struct {
	Name     string    `json:"name"`
	Tiles    [][]Tile  `json:"tiles"`
	Start    Position  `json:"start"`
	Finish   *Position `json:"finish,omitempty"`
	Object   *Position `json:"object,omitempty"`
	DropZone *Position `json:"drop_zone,omitempty"`

	duplicates []TileKind
}

// DecodeMap parses map text into a board. Rows are newline separated and may
// differ in length. Every character must belong to the map alphabet and the
// map must contain a start tile. When a landmark repeats, the first one in
// row-major order wins; see Duplicates.
func DecodeMap(name, text string) (*Board, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	rows := strings.Split(text, "\n")

	board := &Board{
		Name:  name,
		Tiles: make([][]Tile, 0, len(rows)),
	}

	var start *Position
	seen := make(map[TileKind]bool)

	for y, row := range rows {
		tiles := make([]Tile, 0, len(row))
		x := 0
		for _, char := range row {
			kind, ok := TileKindFromCode(char)
			if !ok {
				return nil, &MapError{Challenge: name, Value: string(char), Err: ErrUnknownTile}
			}
			tiles = append(tiles, Tile{X: x, Y: y, Kind: kind})

			switch kind {
			case Start, Finish, Object, DropZone:
				if seen[kind] {
					board.duplicates = appendOnce(board.duplicates, kind)
					break
				}
				seen[kind] = true
				pos := Position{X: x, Y: y}
				switch kind {
				case Start:
					start = &pos
				case Finish:
					board.Finish = &pos
				case Object:
					board.Object = &pos
				case DropZone:
					board.DropZone = &pos
				}
			}
			x++
		}
		board.Tiles = append(board.Tiles, tiles)
	}

	if start == nil {
		return nil, &MapError{Challenge: name, Err: ErrMissingStart}
	}
	board.Start = *start

	return board, nil
}

// Tile returns the tile at x,y. Coordinates outside the grid report false.
func (b *Board) Tile(x, y int) (Tile, bool) {
	if y < 0 || y >= len(b.Tiles) {
		return Tile{}, false
	}
	row := b.Tiles[y]
	if x < 0 || x >= len(row) {
		return Tile{}, false
	}
	return row[x], true
}

// TileAt is Tile for a Position
func (b *Board) TileAt(p Position) (Tile, bool) {
	return b.Tile(p.X, p.Y)
}

// Duplicates returns landmark kinds that appeared more than once in the source map
func (b *Board) Duplicates() []TileKind {
	return b.duplicates
}

// IsFinish reports whether p is the finish position
func (b *Board) IsFinish(p Position) bool {
	return b.Finish != nil && *b.Finish == p
}

// IsObjectOrigin reports whether p is where the object initially lies
func (b *Board) IsObjectOrigin(p Position) bool {
	return b.Object != nil && *b.Object == p
}

// IsDropZone reports whether p is the drop zone
func (b *Board) IsDropZone(p Position) bool {
	return b.DropZone != nil && *b.DropZone == p
}

// Render draws one glyph per tile, rows joined by newlines
func (b *Board) Render() string {
	return b.render(nil)
}

func (b *Board) render(robot *Position) string {
	lines := make([]string, 0, len(b.Tiles))
	for y, row := range b.Tiles {
		var sb strings.Builder
		for x, tile := range row {
			if robot != nil && robot.X == x && robot.Y == y {
				sb.WriteString(RobotGlyph)
				continue
			}
			sb.WriteString(tile.Kind.Glyph())
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func appendOnce(kinds []TileKind, kind TileKind) []TileKind {
	for _, k := range kinds {
		if k == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}
