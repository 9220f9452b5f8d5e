package ext

import (
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
)

var srand *rand.Rand

func init() {
	srand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

func GetRand() *rand.Rand {
	return srand
}

func IsHit(v int) bool {
	return srand.Intn(100) <= v
}

func RandFloat[T constraints.Float](min T, max T) T {
	if max <= min {
		return min
	}
	return T(srand.Float64())*(max-min) + min
}

func RandInt[T constraints.Integer](min T, max T) T {
	if max <= min {
		return min
	}
	return T(srand.Int63n(int64(max-min))) + min
}

// Pick returns a random element of s; the zero value for an empty slice.
func Pick[T any](s []T) T {
	var zero T
	if len(s) == 0 {
		return zero
	}
	return s[srand.Intn(len(s))]
}
