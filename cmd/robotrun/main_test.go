package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const warehouseSolution = `10 RIGHT
20 PICK_UP
30 DOWN
40 RIGHT
50 DROP
60 DOWN`

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"robotrun"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunWithMapFile(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeFile(t, dir, "warehouse.txt", "so2\n22d\n22f\n")
	progPath := writeFile(t, dir, "solve.robot", warehouseSolution)

	out, err := runApp(t, "run", "--map", mapPath, "--program", progPath)
	require.NoError(t, err)

	assert.Contains(t, out, "warehouse: success")
	assert.Contains(t, out, "steps: 6")
	assert.Contains(t, out, "position: (2,2)")
}

func TestRunFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeFile(t, dir, "warehouse.txt", "so2\n22d\n22f")
	progPath := writeFile(t, dir, "short.robot", "10 RIGHT\n20 PICK_UP")

	out, err := runApp(t, "run", "--map", mapPath, "--program", progPath, "--player", "ada")
	assert.ErrorIs(t, err, errRunFailed)
	assert.Contains(t, out, "The robot didn't perform all the required tasks.")
}

func TestRunSeededMessagesRepeat(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeFile(t, dir, "loop.txt", "s2f")
	progPath := writeFile(t, dir, "loop.robot", "10 GOTO 10")

	first, err := runApp(t, "run", "--map", mapPath, "--program", progPath, "--seed", "7")
	require.ErrorIs(t, err, errRunFailed)
	second, err := runApp(t, "run", "--map", mapPath, "--program", progPath, "--seed", "7")
	require.ErrorIs(t, err, errRunFailed)

	assert.Contains(t, first, "Robot ran out of")
	assert.Equal(t, first, second)
}

func TestRunWithChallengeDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "maps.hcl", `
challenge "corridor" {
  layout = ["sodf"]
}
`)
	progPath := writeFile(t, t.TempDir(), "solve.robot", "10 RIGHT\n20 PICK_UP\n30 RIGHT\n40 DROP\n50 RIGHT")

	out, err := runApp(t, "run", "--challenge", "corridor", "--challenges-dir", dir, "--program", progPath)
	require.NoError(t, err)
	assert.Contains(t, out, "corridor: success")

	_, err = runApp(t, "run", "--challenge", "nowhere", "--challenges-dir", dir, "--program", progPath)
	assert.Error(t, err)
}

func TestRunCompileError(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeFile(t, dir, "warehouse.txt", "so2\n22d\n22f")
	progPath := writeFile(t, dir, "bad.robot", "10 JUMP")

	_, err := runApp(t, "run", "--map", mapPath, "--program", progPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 10")
}

func TestRunRequiresMap(t *testing.T) {
	progPath := writeFile(t, t.TempDir(), "solve.robot", warehouseSolution)

	_, err := runApp(t, "run", "--program", progPath)
	assert.EqualError(t, err, "either --map or --challenge is required")
}

func TestCompile(t *testing.T) {
	progPath := writeFile(t, t.TempDir(), "solve.robot", "30 DOWN\n10 RIGHT // go\n20 PICK_UP")

	out, err := runApp(t, "compile", "--program", progPath)
	require.NoError(t, err)
	assert.Equal(t, "10 RIGHT // go\n20 PICK_UP\n30 DOWN\n", out)
}

func TestRender(t *testing.T) {
	mapPath := writeFile(t, t.TempDir(), "warehouse.json", `{"name":"warehouse","description":"crate run","layout":["so2","22d","22f"]}`)

	out, err := runApp(t, "render", "--map", mapPath)
	require.NoError(t, err)
	assert.Contains(t, out, "warehouse (3x3)")
	assert.Contains(t, out, "crate run")
	assert.Contains(t, out, "start: (0,0)")
	assert.Contains(t, out, "drop_zone: (2,1)")
	assert.Contains(t, out, "finish: (2,2)")
}

func TestRenderMissingLandmark(t *testing.T) {
	mapPath := writeFile(t, t.TempDir(), "bare.txt", "s2f")

	out, err := runApp(t, "render", "--map", mapPath)
	require.NoError(t, err)
	assert.Contains(t, out, "object: missing")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"name":"good","layout":["sodf"]}`)
	writeFile(t, dir, "notes.txt", "ignored")

	out, err := runApp(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ good.json")
	assert.Contains(t, out, "1 files checked, 0 invalid")

	writeFile(t, dir, "walled.json", `{"name":"walled","layout":["s21o","2211","2d2f"]}`)
	writeFile(t, dir, "broken.json", `{"name":"broken","layout":["x"]}`)

	out, err = runApp(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ walled.json")
	assert.Contains(t, out, "OBJECT cannot be reached from the start")
	assert.Contains(t, out, "✗ broken.json")
	assert.Contains(t, out, "3 files checked, 2 invalid")
}

func TestValidateStrict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "twice.json", `{"name":"twice","layout":["soodf"]}`)

	out, err := runApp(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "OBJECT appears more than once")

	_, err = runApp(t, "validate", "--strict", dir)
	assert.Error(t, err)
}

func TestValidateSampleChallenges(t *testing.T) {
	dir := filepath.Join("..", "..", "challenges")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("Skipping test - challenges directory not found")
	}

	out, err := runApp(t, "validate", dir)
	require.NoError(t, err, out)
}

func TestLegend(t *testing.T) {
	out, err := runApp(t, "legend")
	require.NoError(t, err)
	assert.Contains(t, out, "GOTO <line_number>")
	assert.Contains(t, out, "d: the drop zone")
}

func TestSolveThenRun(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeFile(t, dir, "warehouse.txt", "so2\n22d\n22f")

	source, err := runApp(t, "solve", "--map", mapPath)
	require.NoError(t, err)
	assert.Contains(t, source, "10 RIGHT // to OBJECT")

	progPath := writeFile(t, dir, "solve.robot", source)
	out, err := runApp(t, "run", "--map", mapPath, "--program", progPath)
	require.NoError(t, err)
	assert.Contains(t, out, "warehouse: success")
}

func TestSolveUnsolvable(t *testing.T) {
	mapPath := writeFile(t, t.TempDir(), "island.txt", "so0df")

	_, err := runApp(t, "solve", "--map", mapPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be reached")
}
