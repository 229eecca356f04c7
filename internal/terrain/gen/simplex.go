package gen

// Simplex noise after Ken Perlin's algorithm. Produces values in [-1, 1].

// grad2 are gradient vectors for 2D simplex noise.
var grad2 = [12][2]float64{
	{1, 1},
	{-1, 1},
	{1, -1},
	{-1, -1},
	{1, 0},
	{-1, 0},
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
	{0, 1},
	{0, -1},
}

// Simplex is a seeded 2D simplex noise source.
type Simplex struct {
	perm [512]int
}

// NewSimplex creates a simplex source with a seeded permutation table.
func NewSimplex(seed int64) *Simplex {
	s := &Simplex{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle driven by the generator's LCG.
	r := rng{state: seed}
	for i := 255; i > 0; i-- {
		j := r.intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

// Eval2 returns 2D simplex noise for the given coordinates.
func (s *Simplex) Eval2(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	// Skew input space to find the simplex cell.
	sk := (x + y) * f2
	i := fastFloor(x + sk)
	j := fastFloor(y + sk)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := s.perm[ii+s.perm[jj]] % 12
	gi1 := s.perm[ii+i1+s.perm[jj+j1]] % 12
	gi2 := s.perm[ii+1+s.perm[jj+1]] % 12

	return 70.0 * (corner(grad2[gi0], x0, y0) + corner(grad2[gi1], x1, y1) + corner(grad2[gi2], x2, y2))
}

func corner(g [2]float64, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * (g[0]*x + g[1]*y)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
