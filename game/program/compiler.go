package program

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/wricardo/robot-challenge/game/engine"
)

// One source line:
//
//	<line_number> <command> [// comment]
//
// GOTO carries its sensor condition as an optional trailing clause, so the
// short form can never shadow the conditional one.
type sourceLine struct {
	Number  int            `parser:"@Int"`
	Command *sourceCommand `parser:"@@"`
	Comment *string        `parser:"@Comment?"`
}

type sourceCommand struct {
	Goto    *gotoClause `parser:"  'GOTO' @@"`
	Keyword string      `parser:"| @Ident"`
}

type gotoClause struct {
	Target    int              `parser:"@Int"`
	Condition *sensorCondition `parser:"( 'IF' 'SENSOR' @@ )?"`
}

type sensorCondition struct {
	Direction string `parser:"@('UP' | 'DOWN' | 'LEFT' | 'RIGHT')"`
	Kind      string `parser:"'IS' @('WALL' | 'VOID' | 'FLOOR' | 'OBJECT' | 'DROP_ZONE')"`
}

var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[^\s\w]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var lineParser = participle.MustBuild[sourceLine](
	participle.Lexer(lineLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// commands maps the argument-free keywords to their ops. It is never written after init.
var commands = map[string]Op{
	"UP":      OpMoveUp,
	"DOWN":    OpMoveDown,
	"LEFT":    OpMoveLeft,
	"RIGHT":   OpMoveRight,
	"PICK_UP": OpPickUp,
	"DROP":    OpDrop,
	"NOOP":    OpNoop,
}

// Compile turns program text into a Program. Blank lines are skipped. The
// first rejected line aborts compilation.
func Compile(source string) (*Program, error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")

	var instructions []Instruction
	for i, text := range strings.Split(source, "\n") {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		in, err := compileLine(text)
		if err != nil {
			err.SourceLine = i + 1
			return nil, err
		}
		instructions = append(instructions, in)
	}

	return New(instructions)
}

func compileLine(text string) (Instruction, *CompileError) {
	parsed, err := lineParser.ParseString("", text)
	if err != nil {
		return Instruction{}, &CompileError{Source: text, Err: ErrInvalidInstruction}
	}

	in := Instruction{Line: parsed.Number}
	if parsed.Comment != nil {
		in.Comment = strings.TrimSpace(strings.TrimPrefix(*parsed.Comment, "//"))
	}

	cmd := parsed.Command
	switch {
	case cmd.Goto != nil && cmd.Goto.Condition != nil:
		in.Op = OpGotoIfSensor
		in.Target = cmd.Goto.Target
		in.Sensor = engine.Direction(cmd.Goto.Condition.Direction)
		in.Expect = engine.TileKind(cmd.Goto.Condition.Kind)
	case cmd.Goto != nil:
		in.Op = OpGoto
		in.Target = cmd.Goto.Target
	default:
		op, ok := commands[cmd.Keyword]
		if !ok {
			return Instruction{}, &CompileError{Line: parsed.Number, Source: text, Err: ErrUnknownCommand}
		}
		in.Op = op
	}

	return in, nil
}
