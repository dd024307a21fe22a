package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMap(t *testing.T) {
	board, err := DecodeMap("warehouse", "s2d\n2o2\n222f")
	require.NoError(t, err)

	assert.Equal(t, "warehouse", board.Name)
	assert.Equal(t, Position{X: 0, Y: 0}, board.Start)
	require.NotNil(t, board.Finish)
	assert.Equal(t, Position{X: 3, Y: 2}, *board.Finish)
	require.NotNil(t, board.Object)
	assert.Equal(t, Position{X: 1, Y: 1}, *board.Object)
	require.NotNil(t, board.DropZone)
	assert.Equal(t, Position{X: 2, Y: 0}, *board.DropZone)

	// Rows keep their source lengths
	require.Len(t, board.Tiles, 3)
	assert.Len(t, board.Tiles[0], 3)
	assert.Len(t, board.Tiles[2], 4)

	want := []Tile{{X: 0, Y: 1, Kind: Floor}, {X: 1, Y: 1, Kind: Object}, {X: 2, Y: 1, Kind: Floor}}
	if diff := cmp.Diff(want, board.Tiles[1]); diff != "" {
		t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMapDeterministic(t *testing.T) {
	text := "0000\n0s20\n01o0\n0fd0"
	first, err := DecodeMap("det", text)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := DecodeMap("det", text)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again, cmp.AllowUnexported(Board{})); diff != "" {
			t.Fatalf("decode %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestDecodeMapErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
		value   string
	}{
		{name: "unknown character", text: "s2x", wantErr: ErrUnknownTile, value: "x"},
		{name: "robot marker is not authorable", text: "s2r", wantErr: ErrUnknownTile, value: "r"},
		{name: "unicode character", text: "s2é", wantErr: ErrUnknownTile, value: "é"},
		{name: "missing start", text: "222\n2f2", wantErr: ErrMissingStart},
		{name: "missing start with every other kind", text: "012fod", wantErr: ErrMissingStart},
		{name: "empty", text: "", wantErr: ErrMissingStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMap("broken", tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var mapErr *MapError
			require.True(t, errors.As(err, &mapErr))
			assert.Equal(t, "broken", mapErr.Challenge)
			assert.Equal(t, tt.value, mapErr.Value)
			assert.Contains(t, err.Error(), "broken")
		})
	}
}

func TestDecodeMapDuplicateLandmarksFirstWins(t *testing.T) {
	board, err := DecodeMap("dups", "s2s\nff2")
	require.NoError(t, err)

	assert.Equal(t, Position{X: 0, Y: 0}, board.Start)
	assert.Equal(t, Position{X: 0, Y: 1}, *board.Finish)
	assert.ElementsMatch(t, []TileKind{Start, Finish}, board.Duplicates())
}

func TestDecodeMapWindowsLineEndings(t *testing.T) {
	board, err := DecodeMap("crlf", "s2\r\n2f\r\n")
	require.NoError(t, err)
	require.Len(t, board.Tiles, 2)
	assert.Len(t, board.Tiles[0], 2)
	assert.Equal(t, Position{X: 1, Y: 1}, *board.Finish)
}

func TestBoardTileBounds(t *testing.T) {
	board, err := DecodeMap("bounds", "s2\n2")
	require.NoError(t, err)

	tile, ok := board.Tile(1, 0)
	assert.True(t, ok)
	assert.Equal(t, Floor, tile.Kind)

	for _, p := range []Position{{-1, 0}, {0, -1}, {2, 0}, {1, 1}, {0, 2}} {
		_, ok := board.TileAt(p)
		assert.False(t, ok, "position %v should be outside the grid", p)
	}
}

func TestBoardRender(t *testing.T) {
	board, err := DecodeMap("render", "s2f\n01od")
	require.NoError(t, err)

	want := "🤖⬜🏁\n🕳️🟦📦🎯"
	assert.Equal(t, want, board.Render())
}
