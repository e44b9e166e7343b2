package linktracklets

// axis holds the polynomial model for one coordinate (RA or Dec) at a
// reference epoch t0: x(t) = X + V*(t-t0) + 0.5*A*(t-t0)^2, in radians,
// radians/day, and radians/day^2 respectively.
type axis struct {
	X, V, A float64
}

// eval evaluates the axis polynomial dt days after its reference epoch.
func (a axis) eval(dt float64) float64 {
	return a.X + a.V*dt + 0.5*a.A*dt*dt
}

// polyFit performs the ordinary least-squares fit of spec.md §4.1:
// x(t) = x0 + v*(t-t0) + 0.5*a*(t-t0)^2
// against samples (epochs[i], values[i]), evaluated relative to t0.
//
// With exactly two samples the fit is solved directly and a is zero.
// With three or more, the 3x3 normal equations of the design matrix
// [1, dt, 0.5*dt^2] are solved in closed form; the problem is linear in
// its three coefficients so no iterative solver is needed.
//
// polyFit fails with IllConditioned if every epoch equals t0 (no time
// baseline to fit a slope against).
func polyFit(epochs, values []float64, t0 float64) (axis, error) {
	n := len(epochs)
	if n < 2 {
		return axis{}, newError(EmptyTracklet,
			"polyFit requires at least 2 samples, got %d", n)
	}

	dts := make([]float64, n)
	spread := false
	for i, t := range epochs {
		dt := t - t0
		dts[i] = dt
		if dt != 0 {
			spread = true
		}
	}
	if !spread {
		return axis{}, newError(IllConditioned,
			"all %d samples share epoch %.6f", n, t0)
	}

	if n == 2 {
		dt := dts[1] - dts[0]
		if dt == 0 {
			return axis{}, newError(IllConditioned,
				"duplicate epoch in 2-sample fit")
		}
		v := (values[1] - values[0]) / dt
		x0 := values[0] - v*dts[0]
		return axis{X: x0, V: v, A: 0}, nil
	}

	// Normal equations for design matrix columns [1, dt, 0.5*dt^2]:
	// sums of products of the columns against each other and against y.
	var s0, s1, s2, s3, s4 float64 // sum of dt^0..dt^4
	var y0, y1, y2 float64         // sum of y, y*dt, y*0.5*dt^2
	for i, dt := range dts {
		y := values[i]
		h := 0.5 * dt * dt
		s0++
		s1 += dt
		s2 += dt * dt
		s3 += dt * dt * dt
		s4 += dt * dt * dt * dt
		y0 += y
		y1 += y * dt
		y2 += y * h
	}
	// Matrix in terms of (x0, v, a):
	// [ s0      s1        s2/2    ] [x0]   [y0]
	// [ s1      s2        s3/2    ] [v ] = [y1]
	// [ s2/2    s3/2      s4/4    ] [a ]   [y2]
	m := [3][3]float64{
		{s0, s1, s2 / 2},
		{s1, s2, s3 / 2},
		{s2 / 2, s3 / 2, s4 / 4},
	}
	b := [3]float64{y0, y1, y2}
	coef, ok := solve3(m, b)
	if !ok {
		return axis{}, newError(IllConditioned,
			"singular normal equations for %d samples", n)
	}
	return axis{X: coef[0], V: coef[1], A: coef[2]}, nil
}

// solve3 solves the 3x3 linear system m*x = b by Cramer's rule.
func solve3(m [3][3]float64, b [3]float64) (x [3]float64, ok bool) {
	det := det3(m)
	if det == 0 {
		return x, false
	}
	for col := 0; col < 3; col++ {
		mc := m
		for row := 0; row < 3; row++ {
			mc[row][col] = b[row]
		}
		x[col] = det3(mc) / det
	}
	return x, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
