package gen

// rng is a small deterministic LCG. Generation threads one explicitly
// through each call instead of drawing from process-wide random state.
type rng struct {
	state int64
}

// blockRNG seeds an rng from the world seed and a world block position, so
// every block's roll is independent of generation order.
func blockRNG(seed int64, x, y, z int, salt uint64) rng {
	return rng{state: int64(hash3(seed, x, y, z) ^ salt)}
}

func (r *rng) next() int64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// intn returns a value in [0, n).
func (r *rng) intn(n int) int {
	return int((r.next()>>33)&0x7FFFFFFF) % n
}

// unit returns a value in [0, 1).
func (r *rng) unit() float64 {
	return float64(uint64(r.next())>>11) / (1 << 53)
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
