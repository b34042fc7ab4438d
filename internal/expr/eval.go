package expr

import (
	"errors"
	"fmt"
	"math"
)

// Env binds variables for evaluation.
type Env map[Var]float64

// ErrDivByZero is returned when a division's right operand evaluates to zero.
var ErrDivByZero = errors.New("division by zero")

// Eval computes the numeric value of n under env.
func Eval(n Node, env Env) (float64, error) {
	switch v := n.(type) {
	case Num:
		return float64(v), nil
	case Var:
		val, ok := env[v]
		if !ok {
			return 0, fmt.Errorf("unbound variable %q", string(v))
		}
		return val, nil
	case Binary:
		l, err := Eval(v.L, env)
		if err != nil {
			return 0, err
		}
		r, err := Eval(v.R, env)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case OpAdd:
			return l + r, nil
		case OpSub:
			return l - r, nil
		case OpMul:
			return l * r, nil
		case OpDiv:
			if r == 0 {
				return 0, ErrDivByZero
			}
			return l / r, nil
		}
		return 0, fmt.Errorf("unknown operator %d", v.Op)
	case Clamp:
		x, lo, hi, err := eval3(v.X, v.Lo, v.Hi, env)
		if err != nil {
			return 0, err
		}
		return math.Max(lo, math.Min(x, hi)), nil
	case If:
		cond, err := Eval(v.Cond, env)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return Eval(v.Then, env)
		}
		return Eval(v.Else, env)
	case Lt:
		l, err := Eval(v.L, env)
		if err != nil {
			return 0, err
		}
		r, err := Eval(v.R, env)
		if err != nil {
			return 0, err
		}
		return boolValue(l < r), nil
	case Between:
		x, lo, hi, err := eval3(v.X, v.Lo, v.Hi, env)
		if err != nil {
			return 0, err
		}
		return boolValue(x >= lo && x <= hi), nil
	case Call:
		args := make([]float64, len(v.Args))
		for i, a := range v.Args {
			val, err := Eval(a, env)
			if err != nil {
				return 0, err
			}
			args[i] = val
		}
		return call(v.Fn, args)
	case nil:
		return 0, errors.New("nil expression")
	default:
		return 0, fmt.Errorf("unsupported node %T", n)
	}
}

// MustEval is Eval for expressions known to be closed under env. It panics on
// error and is intended for tests and constant folding.
func MustEval(n Node, env Env) float64 {
	v, err := Eval(n, env)
	if err != nil {
		panic(err)
	}
	return v
}

func eval3(a, b, c Node, env Env) (float64, float64, float64, error) {
	x, err := Eval(a, env)
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := Eval(b, env)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err := Eval(c, env)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

func call(fn Func, args []float64) (float64, error) {
	switch fn {
	case FnMin:
		if len(args) != 2 {
			return 0, fmt.Errorf("min expects 2 arguments, got %d", len(args))
		}
		return math.Min(args[0], args[1]), nil
	case FnMax:
		if len(args) != 2 {
			return 0, fmt.Errorf("max expects 2 arguments, got %d", len(args))
		}
		return math.Max(args[0], args[1]), nil
	case FnSin:
		if len(args) != 1 {
			return 0, fmt.Errorf("sin expects 1 argument, got %d", len(args))
		}
		return math.Sin(args[0]), nil
	}
	return 0, fmt.Errorf("unknown function %d", fn)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
