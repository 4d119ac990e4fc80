// RNG utilities shared by the drivers.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Every worker gets its own stream
//     from NewRandFrom(name, WorkerSeed(seed, worker)).
package mc

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	randv2 "math/rand/v2"
)

// DefaultSeed is the default base seed of the solver parameters.
const DefaultSeed int64 = 34788

// workerSeedStride separates the base seeds of consecutive workers.
const workerSeedStride int64 = 928374

// Generator names accepted by NewRandFrom.
const (
	GeneratorALFG    = "alfg"    // math/rand additive lagged Fibonacci (default)
	GeneratorPCG     = "pcg"     // math/rand/v2 PCG-DXSM
	GeneratorChaCha8 = "chacha8" // math/rand/v2 ChaCha8
)

// WorkerSeed returns the base seed of worker w: seed + 928374·w.
func WorkerSeed(seed int64, w int) int64 {
	return seed + workerSeedStride*int64(w)
}

// NewRand returns a deterministic math/rand generator for seed. Every seed,
// 0 included, is used as given after mixing with DeriveSeed so that nearby
// seeds give unrelated streams.
//
// Complexity: O(1).
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(seed, 0)))
}

// NewRandFrom returns a deterministic generator of the named family; the
// empty name selects GeneratorALFG.
// Errors: ErrUnknownGenerator.
func NewRandFrom(name string, seed int64) (*rand.Rand, error) {
	switch name {
	case "", GeneratorALFG:
		return NewRand(seed), nil
	case GeneratorPCG:
		return rand.New(newPCGSource(seed)), nil
	case GeneratorChaCha8:
		return rand.New(newChaCha8Source(seed)), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with the SplitMix64 finalizer.
//
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// v2Source exposes a math/rand/v2 source as the math/rand Source64 the
// driver and the moves consume.
type v2Source struct {
	src    randv2.Source
	reseed func(int64)
}

func (s *v2Source) Uint64() uint64  { return s.src.Uint64() }
func (s *v2Source) Int63() int64    { return int64(s.src.Uint64() >> 1) }
func (s *v2Source) Seed(seed int64) { s.reseed(seed) }

func newPCGSource(seed int64) *v2Source {
	p := randv2.NewPCG(0, 0)
	s := &v2Source{src: p, reseed: func(seed int64) {
		p.Seed(uint64(DeriveSeed(seed, 0)), uint64(DeriveSeed(seed, 1)))
	}}
	s.Seed(seed)

	return s
}

func newChaCha8Source(seed int64) *v2Source {
	var key [32]byte
	c := randv2.NewChaCha8(key)
	s := &v2Source{src: c, reseed: func(seed int64) {
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint64(key[8*i:], uint64(DeriveSeed(seed, uint64(i))))
		}
		c.Seed(key)
	}}
	s.Seed(seed)

	return s
}
