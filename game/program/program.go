package program

import (
	"slices"
)

// Program is a compiled, immutable set of instructions keyed by line number.
// One Program may be run against any number of games concurrently.
type Program struct {
	instructions map[int]Instruction
	lines        []int
	duplicates   []int
}

// New builds a Program. When two instructions share a line number the later one wins.
func New(instructions []Instruction) (*Program, error) {
	if len(instructions) == 0 {
		return nil, &CompileError{Err: ErrEmptyProgram}
	}

	p := &Program{instructions: make(map[int]Instruction, len(instructions))}
	for _, in := range instructions {
		if _, exists := p.instructions[in.Line]; exists && !slices.Contains(p.duplicates, in.Line) {
			p.duplicates = append(p.duplicates, in.Line)
		}
		p.instructions[in.Line] = in
	}

	p.lines = make([]int, 0, len(p.instructions))
	for line := range p.instructions {
		p.lines = append(p.lines, line)
	}
	slices.Sort(p.lines)

	return p, nil
}

// Len returns the number of distinct line numbers
func (p *Program) Len() int {
	return len(p.lines)
}

// First returns the smallest declared line number
func (p *Program) First() int {
	return p.lines[0]
}

// Next returns the smallest declared line strictly greater than line
func (p *Program) Next(line int) (int, bool) {
	i, found := slices.BinarySearch(p.lines, line)
	if found {
		i++
	}
	if i >= len(p.lines) {
		return 0, false
	}
	return p.lines[i], true
}

// Instruction returns the instruction declared at line
func (p *Program) Instruction(line int) (Instruction, bool) {
	in, ok := p.instructions[line]
	return in, ok
}

// Lines returns the declared line numbers in ascending order
func (p *Program) Lines() []int {
	return slices.Clone(p.lines)
}

// Duplicates returns line numbers that were declared more than once
func (p *Program) Duplicates() []int {
	return slices.Clone(p.duplicates)
}

// Listing returns the instructions in execution order of their line numbers
func (p *Program) Listing() []Instruction {
	listing := make([]Instruction, 0, len(p.lines))
	for _, line := range p.lines {
		listing = append(listing, p.instructions[line])
	}
	return listing
}
