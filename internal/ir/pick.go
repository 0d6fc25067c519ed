package ir

// Pick returns the index selected by seed from n candidates, or -1 when there
// are none.
func Pick(seed uint64, n int) int {
	if n <= 0 {
		return -1
	}
	return int(seed % uint64(n))
}

// PickDistinct returns min(k, n) distinct indexes in [0, n), in pick order.
// The picks are a partial Fisher-Yates shuffle driven by a splitmix64 stream
// seeded with seed, so they are stable for a given (seed, n, k) and a larger k
// extends a smaller one's result rather than reshuffling it.
func PickDistinct(seed uint64, n, k int) []int {
	if n <= 0 || k <= 0 {
		return []int{}
	}
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := splitmix64{state: seed}
	for i := 0; i < k; i++ {
		j := i + int(rng.next()%uint64(n-i))
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// splitmix64 is Vigna's SplitMix64 generator. Its sequence must never change:
// every recorded page depends on it.
type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
