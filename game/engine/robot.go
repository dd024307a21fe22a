package engine

// Reading is one sensor value: the tile one step away, if the grid has one there
type Reading struct {
	Tile    Tile `json:"tile"`
	Present bool `json:"present"`
}

// Robot is the simulated agent. It only ever mutates itself; the board is read-only.
type Robot struct {
	Position Position              `json:"position"`
	Carrying bool                  `json:"carrying"`
	Sensors  map[Direction]Reading `json:"sensors"`
}

// NewRobot places a robot on the board's start tile with fresh sensor readings
func NewRobot(board *Board) *Robot {
	r := &Robot{
		Position: board.Start,
		Sensors:  make(map[Direction]Reading, len(Directions)),
	}
	r.RefreshSensors(board)
	return r
}

// RefreshSensors recomputes all four readings from the current position
func (r *Robot) RefreshSensors(board *Board) {
	for _, d := range Directions {
		delta, _ := d.Delta()
		tile, ok := board.TileAt(r.Position.Add(delta))
		r.Sensors[d] = Reading{Tile: tile, Present: ok}
	}
}

// Sensor returns the reading for d. Absent readings match no tile kind.
func (r *Robot) Sensor(d Direction) (Tile, bool) {
	reading, ok := r.Sensors[d]
	if !ok || !reading.Present {
		return Tile{}, false
	}
	return reading.Tile, true
}

// Step moves the robot one unit by delta without any checks
func (r *Robot) Step(delta Position) {
	r.Position = r.Position.Add(delta)
}

// Evaluate inspects the tile under the robot. Standing on void, on a wall, or
// outside the grid destroys the robot.
func (r *Robot) Evaluate(board *Board, line int) error {
	tile, ok := board.TileAt(r.Position)
	if !ok || tile.Kind == Void {
		return &RobotError{Line: line, Reason: reasonVoid}
	}
	if tile.Kind == Wall {
		return &RobotError{Line: line, Reason: reasonWall}
	}
	return nil
}
