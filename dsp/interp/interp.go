package interp

// Mode selects the fractional interpolation algorithm.
type Mode int

const (
	// Linear is 2-point linear interpolation.
	Linear Mode = iota
	// Hermite is 4-point cubic Hermite interpolation.
	Hermite
	// Lagrange3 is 4-point third-order Lagrange interpolation.
	Lagrange3
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	case Lagrange3:
		return "lagrange3"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name to a Mode. Unknown names report ok=false.
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "linear":
		return Linear, true
	case "hermite":
		return Hermite, true
	case "lagrange3", "lagrange":
		return Lagrange3, true
	default:
		return Linear, false
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= Linear && m <= Lagrange3
}

// Points returns how many neighbouring samples the mode reads.
func (m Mode) Points() int {
	if m == Linear {
		return 2
	}
	return 4
}

// Linear2 interpolates between x0 and x1 at t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// Lagrange4 computes third-order Lagrange interpolation on the points
// -1, 0, 1, 2 evaluated at t in [0,1].
func Lagrange4(t, xm1, x0, x1, x2 float64) float64 {
	d0 := t + 1
	d1 := t
	d2 := t - 1
	d3 := t - 2

	return -xm1*d1*d2*d3/6 +
		x0*d0*d2*d3/2 -
		x1*d0*d1*d3/2 +
		x2*d0*d1*d2/6
}

// At evaluates mode m between x0 and x1 at t. Linear ignores xm1 and x2.
func At(m Mode, t, xm1, x0, x1, x2 float64) float64 {
	switch m {
	case Hermite:
		return Hermite4(t, xm1, x0, x1, x2)
	case Lagrange3:
		return Lagrange4(t, xm1, x0, x1, x2)
	default:
		return Linear2(t, x0, x1)
	}
}
