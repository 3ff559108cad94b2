package rng

import (
	"math"
	"math/rand/v2"
	"strconv"
)

// SeedSpace is the exclusive upper bound of a stored seed. A seed is read as
// the fractional digits of a decimal, so it never needs more than twelve.
const SeedSpace = 1_000_000_000_000

// Source produces uniformly distributed floats in [0,1).
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 {
	return f()
}

// Fixed returns a Source that always yields v.
func Fixed(v float64) Source {
	return SourceFunc(func() float64 { return v })
}

// NewSource returns a Source backed by the process-wide PRNG.
func NewSource() Source {
	return SourceFunc(rand.Float64)
}

// SeedFraction interprets seed as the fractional digits of a decimal number,
// so 42 becomes 0.42 and 100 becomes 0.1. Non-positive seeds yield 0.
func SeedFraction(seed int64) float64 {
	if seed <= 0 {
		return 0
	}
	f, err := strconv.ParseFloat("0."+strconv.FormatInt(seed, 10), 64)
	if err != nil {
		return 0
	}
	return f
}

// Generate combines the seed with one fresh draw from src and maps the result
// to floor(x*high + low), where x is the folded fraction in [0,1).
//
// Note that high acts as a multiplier rather than as an upper bound: the
// produced value lies in [low, low+high).
func Generate(seed, low, high int64, src Source) int64 {
	x := math.Mod(src.Float64()+SeedFraction(seed), 1)
	if x < 0 {
		x += 1
	}
	// explicit conversion keeps the compiler from fusing into an FMA
	scaled := float64(x * float64(high))
	return int64(math.Floor(scaled + float64(low)))
}

// DefaultSeed draws a fresh seed in [0, SeedSpace).
func DefaultSeed(src Source) int64 {
	seed := int64(math.Floor(src.Float64() * SeedSpace))
	if seed >= SeedSpace {
		seed = SeedSpace - 1
	}
	if seed < 0 {
		seed = 0
	}
	return seed
}
