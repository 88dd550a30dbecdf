package roots

import "math"

// solution reports one refinement attempt.
type solution struct {
	root       float64
	iterations int
	funcalls   int
	converged  bool
}

func failedSolution() solution {
	return solution{root: math.NaN(), iterations: 0, funcalls: 0, converged: false}
}

// brentq locates a root of f within the bracket [xa, xb] using Brent's
// method with inverse quadratic interpolation. It requires a sign change
// over the bracket; given one, convergence is guaranteed.
func brentq(f Func, xa, xb, xtol, rtol float64, maxiter int) solution {
	xpre, xcur := xa, xb
	var xblk, fblk, spre, scur float64

	fpre := f(xpre)
	fcur := f(xcur)
	funcalls := 2

	if math.IsNaN(fpre) || math.IsNaN(fcur) || fpre*fcur > 0 {
		return failedSolution()
	}
	if fpre == 0 {
		return solution{root: xpre, iterations: 0, funcalls: funcalls, converged: true}
	}
	if fcur == 0 {
		return solution{root: xcur, iterations: 0, funcalls: funcalls, converged: true}
	}

	iterations := 0
	for i := 0; i < maxiter; i++ {
		iterations++
		if fpre*fcur < 0 {
			xblk = xpre
			fblk = fpre
			spre = xcur - xpre
			scur = spre
		}
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur = xcur, xblk
			xblk = xpre
			fpre, fcur = fcur, fblk
			fblk = fpre
		}

		delta := (xtol + rtol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return solution{root: xcur, iterations: iterations, funcalls: funcalls, converged: true}
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// interpolate
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// extrapolate
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				// good short step
				spre = scur
				scur = stry
			} else {
				// bisect
				spre = sbis
				scur = sbis
			}
		} else {
			// bisect
			spre = sbis
			scur = sbis
		}

		xpre = xcur
		fpre = fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else {
			if sbis > 0 {
				xcur += delta
			} else {
				xcur -= delta
			}
		}

		fcur = f(xcur)
		funcalls++
		if math.IsNaN(fcur) {
			return failedSolution()
		}
	}
	return solution{root: math.NaN(), iterations: iterations, funcalls: funcalls, converged: false}
}

// bisect is a plain interval-halving fallback with the same contract as brentq.
func bisect(f Func, xa, xb, xtol, rtol float64, maxiter int) solution {
	fa := f(xa)
	fb := f(xb)
	funcalls := 2

	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		return failedSolution()
	}
	if fa == 0 {
		return solution{root: xa, iterations: 0, funcalls: funcalls, converged: true}
	}
	if fb == 0 {
		return solution{root: xb, iterations: 0, funcalls: funcalls, converged: true}
	}

	iterations := 0
	for i := 0; i < maxiter; i++ {
		iterations++
		xm := (xa + xb) / 2
		fm := f(xm)
		funcalls++
		if math.IsNaN(fm) {
			return failedSolution()
		}
		if fm == 0 || (xb-xa)/2 < xtol+rtol*math.Abs(xm) {
			return solution{root: xm, iterations: iterations, funcalls: funcalls, converged: true}
		}
		if fa*fm < 0 {
			xb = xm
		} else {
			xa = xm
			fa = fm
		}
	}
	return solution{root: math.NaN(), iterations: iterations, funcalls: funcalls, converged: false}
}

// secant refines from a two-point seed (x0, x1). No bracket is required,
// so convergence is not guaranteed; failures surface as converged=false.
func secant(f Func, x0, x1, xtol, rtol float64, maxiter int) solution {
	f0 := f(x0)
	f1 := f(x1)
	funcalls := 2

	if math.IsNaN(f0) || math.IsNaN(f1) {
		return failedSolution()
	}
	if f0 == 0 {
		return solution{root: x0, iterations: 0, funcalls: funcalls, converged: true}
	}

	iterations := 0
	for i := 0; i < maxiter; i++ {
		iterations++
		if f1 == f0 {
			return solution{root: math.NaN(), iterations: iterations, funcalls: funcalls, converged: false}
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		if math.IsNaN(x2) || math.IsInf(x2, 0) {
			return solution{root: math.NaN(), iterations: iterations, funcalls: funcalls, converged: false}
		}
		if math.Abs(x2-x1) < xtol+rtol*math.Abs(x2) {
			return solution{root: x2, iterations: iterations, funcalls: funcalls, converged: true}
		}
		x0, f0 = x1, f1
		x1 = x2
		f1 = f(x1)
		funcalls++
		if math.IsNaN(f1) {
			return failedSolution()
		}
		if f1 == 0 {
			return solution{root: x1, iterations: iterations, funcalls: funcalls, converged: true}
		}
	}
	return solution{root: math.NaN(), iterations: iterations, funcalls: funcalls, converged: false}
}
