package particle

// jitterScale maps a uniform [0,1) sample to the (u-0.5)/50 offset range.
const jitterScale = 1.0 / 50

// Jitter overwrites dst with a small pseudo-random offset, componentwise
// (u-0.5)/50 with u uniform in [0,1). The result depends only on
// (salt, a, b, component), never on call order, so concurrent callers get
// reproducible values.
func Jitter(dst Vector, salt uint64, a, b int) {
	h := mix(salt ^ mix(uint64(a)+1) ^ mix(uint64(b)+0x9e3779b97f4a7c15))
	for k := range dst {
		h = mix(h + uint64(k) + 1)
		u := float64(h>>11) / (1 << 53)
		dst[k] = (u - 0.5) * jitterScale
	}
	// a zero vector would reintroduce the singularity
	if dst.Length() == 0 {
		dst[0] = jitterScale / 2
	}
}

// mix is the splitmix64 finalizer.
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
