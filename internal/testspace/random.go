package testspace

// RandomFail returns a deterministic failure predicate that fails about
// one in rate partial assignments, depending on seed.
func RandomFail(seed int64, rate int) func(vals []int) bool {
	return func(vals []int) bool {
		h, n := uint64(seed), 0
		for _, v := range vals {
			if v == Unassigned {
				break
			}
			h = h*31 + uint64(v) + 1
			n++
		}
		if n == 0 {
			return false
		}
		h ^= h >> 29
		h *= 0x9e3779b97f4a7c15
		h ^= h >> 32
		return h%uint64(rate) == 0
	}
}
