// Package program models a captured computation graph as a flat list of
// instructions in dependency order. The last instruction is the root; its
// value is the computation's result. Programs are read-only once loaded
// from a snapshot.
package program

import (
	"errors"
	"fmt"
	"sort"

	"recomp/internal/literal"
	"recomp/internal/shape"
)

// ErrInvalidProgram is returned when a program fails validation.
var ErrInvalidProgram = errors.New("invalid program")

// Opcode identifies an instruction's operation.
type Opcode string

const (
	OpParameter Opcode = "parameter"  // unbound input, bound at execution time
	OpConstant  Opcode = "constant"   // embedded literal value
	OpInfeed    Opcode = "infeed"     // one value popped from the streaming input channel
	OpAdd       Opcode = "add"        // elementwise addition
	OpMultiply  Opcode = "multiply"   // elementwise multiplication
	OpNegate    Opcode = "negate"     // elementwise negation
	OpReduceSum Opcode = "reduce-sum" // sum of all elements, yielding a scalar
)

// operandCounts maps each opcode to its required operand count.
var operandCounts = map[Opcode]int{
	OpParameter: 0,
	OpConstant:  0,
	OpInfeed:    0,
	OpAdd:       2,
	OpMultiply:  2,
	OpNegate:    1,
	OpReduceSum: 1,
}

// Instruction is one operation in a program. Operands index earlier
// instructions in the same program.
type Instruction struct {
	Opcode    Opcode          `json:"opcode"`
	Shape     shape.Shape     `json:"shape"`
	Operands  []int           `json:"operands,omitempty"`
	Parameter int             `json:"parameter,omitempty"` // parameter index, for OpParameter
	Literal   *literal.Record `json:"literal,omitempty"`   // embedded value, for OpConstant
}

// Program is a computation graph: a name plus instructions in dependency
// order.
type Program struct {
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
}

// Parameters returns the shapes of the program's unbound parameters,
// ordered by declared parameter index.
func (p *Program) Parameters() []shape.Shape {
	type param struct {
		index int
		shape shape.Shape
	}
	var params []param
	for _, inst := range p.Instructions {
		if inst.Opcode == OpParameter {
			params = append(params, param{inst.Parameter, inst.Shape})
		}
	}
	sort.Slice(params, func(i, j int) bool { return params[i].index < params[j].index })

	shapes := make([]shape.Shape, len(params))
	for i, pr := range params {
		shapes[i] = pr.shape
	}
	return shapes
}

// InfeedShapes returns the declared shapes of the program's streaming
// input operations, in instruction order.
func (p *Program) InfeedShapes() []shape.Shape {
	var shapes []shape.Shape
	for _, inst := range p.Instructions {
		if inst.Opcode == OpInfeed {
			shapes = append(shapes, inst.Shape)
		}
	}
	return shapes
}

// Root returns the index of the root instruction.
func (p *Program) Root() int {
	return len(p.Instructions) - 1
}

// Validate checks structural well-formedness: known opcodes, operand
// references to earlier instructions, shape agreement for elementwise
// ops, dense unique parameter indices, and constants carrying a literal
// of the declared shape.
func (p *Program) Validate() error {
	if len(p.Instructions) == 0 {
		return fmt.Errorf("%w: no instructions", ErrInvalidProgram)
	}

	seenParams := make(map[int]bool)
	numParams := 0

	for i, inst := range p.Instructions {
		want, known := operandCounts[inst.Opcode]
		if !known {
			return fmt.Errorf("%w: instruction %d: unknown opcode %q", ErrInvalidProgram, i, inst.Opcode)
		}
		if len(inst.Operands) != want {
			return fmt.Errorf("%w: instruction %d: %s needs %d operand(s), has %d",
				ErrInvalidProgram, i, inst.Opcode, want, len(inst.Operands))
		}
		if err := inst.Shape.Validate(); err != nil {
			return fmt.Errorf("%w: instruction %d: %v", ErrInvalidProgram, i, err)
		}

		for _, op := range inst.Operands {
			if op < 0 || op >= i {
				return fmt.Errorf("%w: instruction %d: operand %d out of range", ErrInvalidProgram, i, op)
			}
		}

		switch inst.Opcode {
		case OpParameter:
			if seenParams[inst.Parameter] {
				return fmt.Errorf("%w: duplicate parameter index %d", ErrInvalidProgram, inst.Parameter)
			}
			seenParams[inst.Parameter] = true
			numParams++
		case OpConstant:
			if inst.Literal == nil {
				return fmt.Errorf("%w: instruction %d: constant has no literal", ErrInvalidProgram, i)
			}
			lit, err := literal.Decode(*inst.Literal)
			if err != nil {
				return fmt.Errorf("%w: instruction %d: %v", ErrInvalidProgram, i, err)
			}
			if !lit.Shape.Equal(inst.Shape) {
				return fmt.Errorf("%w: instruction %d: constant literal shape %s does not match declared %s",
					ErrInvalidProgram, i, lit.Shape, inst.Shape)
			}
		case OpAdd, OpMultiply:
			a := p.Instructions[inst.Operands[0]].Shape
			b := p.Instructions[inst.Operands[1]].Shape
			if !a.Equal(b) || !a.Equal(inst.Shape) {
				return fmt.Errorf("%w: instruction %d: %s operand shapes %s, %s do not agree with %s",
					ErrInvalidProgram, i, inst.Opcode, a, b, inst.Shape)
			}
		case OpNegate:
			a := p.Instructions[inst.Operands[0]].Shape
			if !a.Equal(inst.Shape) {
				return fmt.Errorf("%w: instruction %d: negate operand shape %s does not match %s",
					ErrInvalidProgram, i, a, inst.Shape)
			}
		case OpReduceSum:
			if !inst.Shape.IsScalar() {
				return fmt.Errorf("%w: instruction %d: reduce-sum result must be scalar, got %s",
					ErrInvalidProgram, i, inst.Shape)
			}
			a := p.Instructions[inst.Operands[0]].Shape
			if a.Type != inst.Shape.Type {
				return fmt.Errorf("%w: instruction %d: reduce-sum element type %s does not match operand %s",
					ErrInvalidProgram, i, inst.Shape.Type, a.Type)
			}
		}
	}

	// Parameter indices must be dense: 0..n-1.
	for i := 0; i < numParams; i++ {
		if !seenParams[i] {
			return fmt.Errorf("%w: missing parameter index %d", ErrInvalidProgram, i)
		}
	}

	return nil
}
