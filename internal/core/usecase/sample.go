package usecase

import (
	"math/rand/v2"
	"slices"
)

// Sample draws size distinct items with a generator seeded by seed. The same
// input, size and seed always produce the same subset in the same order.
func Sample[T any](items []T, size int, seed uint64) []T {
	if size <= 0 || len(items) == 0 {
		return []T{}
	}
	pool := slices.Clone(items)
	if size > len(pool) {
		size = len(pool)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := 0; i < size; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:size:size]
}
