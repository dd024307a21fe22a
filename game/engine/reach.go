package engine

import "slices"

// passable reports whether the robot can stand on the tile without crashing
// or being destroyed
func passable(t Tile) bool {
	return t.Kind != Wall && t.Kind != Void
}

// Reachable returns every position the robot can walk to from the start
// without entering a wall or the void. The start itself is included.
func (b *Board) Reachable() map[Position]bool {
	visited := map[Position]bool{b.Start: true}
	queue := []Position{b.Start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			delta, _ := d.Delta()
			next := current.Add(delta)
			if visited[next] {
				continue
			}
			tile, ok := b.TileAt(next)
			if !ok || !passable(tile) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	return visited
}

// Unreachable lists the landmarks present on the board that the robot can
// never walk to from the start
func (b *Board) Unreachable() []TileKind {
	reachable := b.Reachable()

	var kinds []TileKind
	for _, landmark := range []struct {
		kind TileKind
		pos  *Position
	}{
		{Object, b.Object},
		{DropZone, b.DropZone},
		{Finish, b.Finish},
	} {
		if landmark.pos != nil && !reachable[*landmark.pos] {
			kinds = append(kinds, landmark.kind)
		}
	}
	return kinds
}

// Missing lists the landmarks a winnable board needs but this one lacks
func (b *Board) Missing() []TileKind {
	var kinds []TileKind
	if b.Object == nil {
		kinds = append(kinds, Object)
	}
	if b.DropZone == nil {
		kinds = append(kinds, DropZone)
	}
	if b.Finish == nil {
		kinds = append(kinds, Finish)
	}
	return kinds
}

// Path returns the shortest walk from one position to another over walkable
// tiles, or false when there is none
func (b *Board) Path(from, to Position) ([]Direction, bool) {
	if from == to {
		return nil, true
	}

	type step struct {
		prev Position
		dir  Direction
	}
	came := map[Position]step{}
	visited := map[Position]bool{from: true}
	queue := []Position{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			delta, _ := d.Delta()
			next := current.Add(delta)
			if visited[next] {
				continue
			}
			tile, ok := b.TileAt(next)
			if !ok || !passable(tile) {
				continue
			}
			visited[next] = true
			came[next] = step{prev: current, dir: d}

			if next == to {
				var path []Direction
				for p := to; p != from; p = came[p].prev {
					path = append(path, came[p].dir)
				}
				slices.Reverse(path)
				return path, true
			}
			queue = append(queue, next)
		}
	}

	return nil, false
}
