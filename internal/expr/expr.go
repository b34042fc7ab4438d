// Package expr is a small engine-agnostic expression tree for frame-indexed
// motion. Trees are evaluated numerically in tests and previews and are
// rendered to an engine's textual syntax only through a Dialect.
package expr

import "math"

// Node is a closed set of expression node types.
type Node interface {
	node()
}

// Num is a numeric literal.
type Num float64

// Var is a named variable bound at evaluation or render time.
type Var string

// Op is a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// Binary applies Op to L and R.
type Binary struct {
	Op Op
	L  Node
	R  Node
}

// Clamp limits X to [Lo, Hi].
type Clamp struct {
	X  Node
	Lo Node
	Hi Node
}

// If selects Then when Cond is non-zero, Else otherwise.
type If struct {
	Cond Node
	Then Node
	Else Node
}

// Lt evaluates to 1 when L < R, else 0.
type Lt struct {
	L Node
	R Node
}

// Between evaluates to 1 when Lo <= X <= Hi, else 0.
type Between struct {
	X  Node
	Lo Node
	Hi Node
}

// Func names a built-in function.
type Func int

const (
	FnMin Func = iota
	FnMax
	FnSin
)

// Call applies a built-in function to its arguments.
type Call struct {
	Fn   Func
	Args []Node
}

func (Num) node()     {}
func (Var) node()     {}
func (Binary) node()  {}
func (Clamp) node()   {}
func (If) node()      {}
func (Lt) node()      {}
func (Between) node() {}
func (Call) node()    {}

// Variable vocabulary shared by the compiler and dialects.
const (
	Frame    Var = "frame"     // output frame index
	Time     Var = "time"      // seconds since clip start
	FrameW   Var = "frame_w"   // main frame width
	FrameH   Var = "frame_h"   // main frame height
	LayerW   Var = "layer_w"   // width of the layer being placed
	LayerH   Var = "layer_h"   // height of the layer being placed
	TextW    Var = "text_w"    // rendered text width
	TextH    Var = "text_h"    // rendered text height
	OutFrame Var = "out_frame" // zoom/pan output frame index
	InW      Var = "in_w"      // zoom/pan input width
	InH      Var = "in_h"      // zoom/pan input height
	Zoom     Var = "zoom"      // current zoom factor
)

// Int builds an integer literal.
func Int(v int) Node { return Num(float64(v)) }

// Add builds l+r, folding literals and dropping zero terms.
func Add(l, r Node) Node {
	if a, ok := l.(Num); ok {
		if b, ok := r.(Num); ok {
			return a + b
		}
		if a == 0 {
			return r
		}
	}
	if b, ok := r.(Num); ok && b == 0 {
		return l
	}
	return Binary{Op: OpAdd, L: l, R: r}
}

// Sub builds l-r, folding literals and dropping a zero subtrahend.
func Sub(l, r Node) Node {
	if a, ok := l.(Num); ok {
		if b, ok := r.(Num); ok {
			return a - b
		}
	}
	if b, ok := r.(Num); ok && b == 0 {
		return l
	}
	return Binary{Op: OpSub, L: l, R: r}
}

// Mul builds l*r, folding literals and unit factors.
func Mul(l, r Node) Node {
	if a, ok := l.(Num); ok {
		if b, ok := r.(Num); ok {
			return a * b
		}
		if a == 1 {
			return r
		}
	}
	if b, ok := r.(Num); ok && b == 1 {
		return l
	}
	return Binary{Op: OpMul, L: l, R: r}
}

// Div builds l/r, folding literals when r is a non-zero literal.
func Div(l, r Node) Node {
	if b, ok := r.(Num); ok {
		if b == 1 {
			return l
		}
		if a, ok := l.(Num); ok && b != 0 {
			return a / b
		}
	}
	return Binary{Op: OpDiv, L: l, R: r}
}

// Sum adds all terms left to right.
func Sum(terms ...Node) Node {
	if len(terms) == 0 {
		return Num(0)
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out = Add(out, t)
	}
	return out
}

// Half builds n/2.
func Half(n Node) Node { return Div(n, Num(2)) }

// Center builds (outer-inner)/2, the offset that centers inner within outer.
func Center(outer, inner Node) Node { return Half(Sub(outer, inner)) }

// Min builds min(a, b).
func Min(a, b Node) Node { return Call{Fn: FnMin, Args: []Node{a, b}} }

// Max builds max(a, b).
func Max(a, b Node) Node { return Call{Fn: FnMax, Args: []Node{a, b}} }

// Sin builds sin(n).
func Sin(n Node) Node { return Call{Fn: FnSin, Args: []Node{n}} }

// Substitute returns a copy of n with variables replaced by the bound nodes.
// Unbound variables are kept.
func Substitute(n Node, bindings map[Var]Node) Node {
	switch v := n.(type) {
	case Num:
		return v
	case Var:
		if b, ok := bindings[v]; ok {
			return b
		}
		return v
	case Binary:
		return Binary{Op: v.Op, L: Substitute(v.L, bindings), R: Substitute(v.R, bindings)}
	case Clamp:
		return Clamp{X: Substitute(v.X, bindings), Lo: Substitute(v.Lo, bindings), Hi: Substitute(v.Hi, bindings)}
	case If:
		return If{Cond: Substitute(v.Cond, bindings), Then: Substitute(v.Then, bindings), Else: Substitute(v.Else, bindings)}
	case Lt:
		return Lt{L: Substitute(v.L, bindings), R: Substitute(v.R, bindings)}
	case Between:
		return Between{X: Substitute(v.X, bindings), Lo: Substitute(v.Lo, bindings), Hi: Substitute(v.Hi, bindings)}
	case Call:
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, bindings)
		}
		return Call{Fn: v.Fn, Args: args}
	default:
		return n
	}
}

// Uses reports whether v appears anywhere in n.
func Uses(n Node, v Var) bool {
	switch x := n.(type) {
	case Var:
		return x == v
	case Binary:
		return Uses(x.L, v) || Uses(x.R, v)
	case Clamp:
		return Uses(x.X, v) || Uses(x.Lo, v) || Uses(x.Hi, v)
	case If:
		return Uses(x.Cond, v) || Uses(x.Then, v) || Uses(x.Else, v)
	case Lt:
		return Uses(x.L, v) || Uses(x.R, v)
	case Between:
		return Uses(x.X, v) || Uses(x.Lo, v) || Uses(x.Hi, v)
	case Call:
		for _, a := range x.Args {
			if Uses(a, v) {
				return true
			}
		}
	}
	return false
}

// TwoPi is 2π as a literal.
const TwoPi = Num(2 * math.Pi)
