package expr

import (
	"strconv"
	"strings"
)

// Dialect renders expression trees in an engine's syntax. Vars maps abstract
// variable names to engine names; unmapped variables render as-is.
type Dialect struct {
	Name  string
	Vars  map[Var]string
	Funcs map[Func]string
	// If, Lt and Between name the conditional and comparison functions.
	If      string
	Lt      string
	Between string
}

// Plain renders the abstract vocabulary with generic function names. It is
// used for logs, plan dumps and error messages.
var Plain = Dialect{
	Name:    "plain",
	Funcs:   map[Func]string{FnMin: "min", FnMax: "max", FnSin: "sin"},
	If:      "if",
	Lt:      "lt",
	Between: "between",
}

// String renders n in the Plain dialect.
func String(n Node) string {
	return Plain.Format(n)
}

const (
	precAdd  = 1
	precMul  = 2
	precAtom = 3
)

// Format renders n.
func (d Dialect) Format(n Node) string {
	var b strings.Builder
	d.write(&b, n)
	return b.String()
}

func (d Dialect) write(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case Num:
		b.WriteString(formatNum(float64(v)))
	case Var:
		b.WriteString(d.varName(v))
	case Binary:
		prec := opPrec(v.Op)
		d.operand(b, v.L, prec, false, v.Op)
		b.WriteString(opSymbol(v.Op))
		d.operand(b, v.R, prec, true, v.Op)
	case Clamp:
		// max(lo,min(x,hi))
		d.call(b, d.funcName(FnMax), v.Lo, Call{Fn: FnMin, Args: []Node{v.X, v.Hi}})
	case If:
		d.call(b, d.If, v.Cond, v.Then, v.Else)
	case Lt:
		d.call(b, d.Lt, v.L, v.R)
	case Between:
		d.call(b, d.Between, v.X, v.Lo, v.Hi)
	case Call:
		d.call(b, d.funcName(v.Fn), v.Args...)
	case nil:
		b.WriteString("0")
	}
}

func (d Dialect) operand(b *strings.Builder, n Node, parentPrec int, right bool, parentOp Op) {
	needParens := false
	switch v := n.(type) {
	case Num:
		needParens = v < 0
	case Binary:
		prec := opPrec(v.Op)
		if prec < parentPrec {
			needParens = true
		} else if prec == parentPrec && right && (parentOp == OpSub || parentOp == OpDiv) {
			needParens = true
		}
	}
	if needParens {
		b.WriteByte('(')
		d.write(b, n)
		b.WriteByte(')')
		return
	}
	d.write(b, n)
}

func (d Dialect) call(b *strings.Builder, name string, args ...Node) {
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		d.write(b, a)
	}
	b.WriteByte(')')
}

func (d Dialect) varName(v Var) string {
	if name, ok := d.Vars[v]; ok {
		return name
	}
	return string(v)
}

func (d Dialect) funcName(fn Func) string {
	if name, ok := d.Funcs[fn]; ok {
		return name
	}
	switch fn {
	case FnMin:
		return "min"
	case FnMax:
		return "max"
	default:
		return "sin"
	}
}

func opPrec(op Op) int {
	if op == OpMul || op == OpDiv {
		return precMul
	}
	return precAdd
}

func opSymbol(op Op) string {
	switch op {
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "+"
	}
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
