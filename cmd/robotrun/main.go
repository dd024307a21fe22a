// Command robotrun compiles, runs and checks robot programs and challenge
// maps from the terminal, without a server.
//
//	robotrun run --map warehouse.txt --program solve.robot
//	robotrun run --challenge warehouse --program solve.robot
//	robotrun compile --program solve.robot
//	robotrun solve --challenge crater > crater.robot
//	robotrun render --challenge crater
//	robotrun validate challenges
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/robot-challenge/game/challenge"
	"github.com/wricardo/robot-challenge/game/engine"
	"github.com/wricardo/robot-challenge/game/program"
	"github.com/wricardo/robot-challenge/logging"
)

// errRunFailed is returned when a program runs but does not win
var errRunFailed = errors.New("run failed")

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mapFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "map",
			Aliases: []string{"m"},
			Usage:   "map file: raw map text, or a .json/.hcl challenge file",
			Sources: cli.EnvVars("ROBOT_MAP"),
		},
		&cli.StringFlag{
			Name:    "challenge",
			Aliases: []string{"c"},
			Usage:   "challenge name looked up in --challenges-dir",
		},
		&cli.StringFlag{
			Name:    "challenges-dir",
			Value:   "challenges",
			Usage:   "directory of challenge files",
			Sources: cli.EnvVars("CHALLENGES_DIR"),
		},
	}
}

func programFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "program",
		Aliases:  []string{"p"},
		Usage:    "program file, one '<line_number> <instruction>' per line",
		Sources:  cli.EnvVars("ROBOT_PROGRAM"),
		Required: true,
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "robotrun",
		Usage: "program a robot on the moon",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "trace every executed instruction",
				Sources: cli.EnvVars("ROBOT_DEBUG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a program against a map",
				Flags: append(mapFlags(),
					programFlag(),
					&cli.StringFlag{
						Name:    "player",
						Value:   "player",
						Usage:   "player name used in messages",
						Sources: cli.EnvVars("ROBOT_PLAYER"),
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "seed for failure messages (0 picks at random)",
					},
				),
				Action: runAction,
			},
			{
				Name:   "compile",
				Usage:  "compile a program and print it in execution order",
				Flags:  []cli.Flag{programFlag()},
				Action: compileAction,
			},
			{
				Name:   "solve",
				Usage:  "write the shortest program that wins a map",
				Flags:  mapFlags(),
				Action: solveAction,
			},
			{
				Name:   "render",
				Usage:  "print a map with its size and landmarks",
				Flags:  mapFlags(),
				Action: renderAction,
			},
			{
				Name:      "validate",
				Usage:     "check every challenge file in a directory",
				ArgsUsage: "[DIR]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "treat repeated landmarks as errors",
					},
				},
				Action: validateAction,
			},
			{
				Name:  "legend",
				Usage: "print the language reference and the map legend",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s\n\n%s\n", program.LanguageReference, engine.MapLegend)
					return nil
				},
			},
		},
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := new(slog.LevelVar)
	if cmd.Root().Bool("debug") {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
	logger, _, err := logging.New(logging.Options{Level: level, Writer: cmd.Root().ErrWriter})
	if err != nil {
		return logging.Discard()
	}
	return logger
}

// loadChallenge resolves --map or --challenge into a challenge definition
func loadChallenge(cmd *cli.Command, logger *slog.Logger) (*engine.Challenge, error) {
	mapPath := cmd.String("map")
	name := cmd.String("challenge")

	switch {
	case mapPath != "" && challenge.IsChallengeFile(mapPath):
		challenges, err := challenge.LoadFile(mapPath)
		if err != nil {
			return nil, err
		}
		if len(challenges) == 0 {
			return nil, fmt.Errorf("%s declares no challenges", mapPath)
		}
		if name == "" {
			return challenges[0], nil
		}
		for _, c := range challenges {
			if c.Name == name {
				return c, nil
			}
		}
		return nil, fmt.Errorf("challenge %s: %w", name, challenge.ErrChallengeNotFound)

	case mapPath != "":
		data, err := os.ReadFile(mapPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read map: %w", err)
		}
		text := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
		return &engine.Challenge{
			Name:   strings.TrimSuffix(filepath.Base(mapPath), filepath.Ext(mapPath)),
			Layout: strings.Split(text, "\n"),
		}, nil

	case name != "":
		manager, err := challenge.NewManager(cmd.String("challenges-dir"), challenge.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
		c, err := manager.Get(name)
		if err != nil {
			return nil, fmt.Errorf("challenge %s: %w", name, err)
		}
		return c, nil
	}

	return nil, errors.New("either --map or --challenge is required")
}

func compileFile(path string) (*program.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	return program.Compile(string(data))
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	logger := newLogger(cmd)

	c, err := loadChallenge(cmd, logger)
	if err != nil {
		return err
	}
	board, err := c.NewBoard()
	if err != nil {
		return err
	}
	prog, err := compileFile(cmd.String("program"))
	if err != nil {
		return err
	}

	opts := program.RunOptions{Logger: logger}
	if seed := cmd.Int("seed"); seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}

	game := engine.NewGame(board, cmd.String("player"))
	result, err := prog.Run(game, opts)
	if err != nil {
		return err
	}

	printResult(out, c.Name, result)
	fmt.Fprintf(out, "\n%s\n", game.Render())

	if !result.Success {
		return errRunFailed
	}
	return nil
}

func printResult(out io.Writer, name string, result program.Result) {
	if result.Success {
		fmt.Fprintf(out, "%s: success\n", name)
	} else {
		fmt.Fprintf(out, "%s: %s\n", name, result.Error)
	}
	fmt.Fprintf(out, "instructions: %d\nsteps: %d\nlast line: %d\nposition: %s\n",
		result.Instructions, result.Steps, result.LastLine, result.Position)
}

func compileAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	prog, err := compileFile(cmd.String("program"))
	if err != nil {
		return err
	}

	for _, in := range prog.Listing() {
		fmt.Fprintln(out, in.String())
	}
	if dups := prog.Duplicates(); len(dups) > 0 {
		fmt.Fprintf(cmd.Root().ErrWriter, "warning: line numbers declared more than once, the last one wins: %v\n", dups)
	}
	return nil
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	c, err := loadChallenge(cmd, newLogger(cmd))
	if err != nil {
		return err
	}
	board, err := c.NewBoard()
	if err != nil {
		return err
	}

	prog, err := program.Synthesize(board)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	for _, in := range prog.Listing() {
		fmt.Fprintln(cmd.Root().Writer, in.String())
	}
	return nil
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	c, err := loadChallenge(cmd, newLogger(cmd))
	if err != nil {
		return err
	}
	board, err := c.NewBoard()
	if err != nil {
		return err
	}

	width := 0
	for _, row := range board.Tiles {
		width = max(width, len(row))
	}

	fmt.Fprintf(out, "%s (%dx%d)\n", c.Name, width, len(board.Tiles))
	if c.Description != "" {
		fmt.Fprintln(out, c.Description)
	}
	fmt.Fprintf(out, "start: %s\n", board.Start)
	for _, landmark := range []struct {
		kind engine.TileKind
		pos  *engine.Position
	}{
		{engine.Object, board.Object},
		{engine.DropZone, board.DropZone},
		{engine.Finish, board.Finish},
	} {
		if landmark.pos == nil {
			fmt.Fprintf(out, "%s: missing\n", strings.ToLower(string(landmark.kind)))
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", strings.ToLower(string(landmark.kind)), landmark.pos)
	}
	fmt.Fprintf(out, "\n%s\n", board.Render())
	return nil
}

// fileReport is the outcome of validating one challenge file
type fileReport struct {
	file     string
	errors   []string
	warnings []string
}

func validateFile(path string, strict bool) fileReport {
	report := fileReport{file: filepath.Base(path)}

	challenges, err := challenge.LoadFile(path)
	if err != nil {
		report.errors = append(report.errors, err.Error())
		return report
	}
	if len(challenges) == 0 {
		report.warnings = append(report.warnings, "no challenges declared")
	}

	for _, c := range challenges {
		if err := engine.ValidateChallenge(c, strict); err != nil {
			report.errors = append(report.errors, fmt.Sprintf("%s: %v", c.Name, err))
			continue
		}
		board, err := c.NewBoard()
		if err != nil {
			report.errors = append(report.errors, fmt.Sprintf("%s: %v", c.Name, err))
			continue
		}
		for _, kind := range board.Missing() {
			report.warnings = append(report.warnings, fmt.Sprintf("%s: no %s tile, the challenge cannot be won", c.Name, kind))
		}
		for _, kind := range board.Unreachable() {
			report.errors = append(report.errors, fmt.Sprintf("%s: %s cannot be reached from the start", c.Name, kind))
		}
		for _, kind := range board.Duplicates() {
			report.warnings = append(report.warnings, fmt.Sprintf("%s: %s appears more than once, the first one is used", c.Name, kind))
		}
	}
	return report
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	dir := cmd.Args().First()
	if dir == "" {
		dir = "challenges"
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	checked, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !challenge.IsChallengeFile(entry.Name()) {
			continue
		}
		checked++

		report := validateFile(filepath.Join(dir, entry.Name()), cmd.Bool("strict"))
		if len(report.errors) == 0 {
			fmt.Fprintf(out, "✓ %s\n", report.file)
		} else {
			failed++
			fmt.Fprintf(out, "✗ %s\n", report.file)
		}
		for _, e := range report.errors {
			fmt.Fprintf(out, "  error: %s\n", e)
		}
		for _, w := range report.warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}

	fmt.Fprintf(out, "\n%d files checked, %d invalid\n", checked, failed)
	if failed > 0 {
		return fmt.Errorf("%d invalid challenge files", failed)
	}
	return nil
}
