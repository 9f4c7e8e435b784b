// Package koalabear instantiates the Poseidon2 permutation over the
// KoalaBear field (p = 2^31 - 2^24 + 1) at widths 16 and 24. 3 is coprime
// to p - 1, so the S-box is the cheapest possible cube. Round constants are
// derived from fixed seeds with the constants package; accelerated packed
// execution for this field is not implemented yet, so the packed instances
// run on the portable lane fallback, functionally equivalent to scalars.
package koalabear

import (
	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/aerius-labs/poseidon2-go/constants"
	"github.com/aerius-labs/poseidon2-go/packing"
	"github.com/aerius-labs/poseidon2-go/poseidon2"
)

const (
	Width16 = 16
	Width24 = 24

	FullRounds      = 8
	PartialRounds16 = 20
	PartialRounds24 = 23

	degreeSBox = 3

	// KoalaBear prime
	q uint64 = 2130706433
)

// Per-width derivation seeds for the round-constant store.
var (
	seed16 = []byte("KoalaBear-width-16")
	seed24 = []byte("KoalaBear-width-24")
)

// Permutation is a scalar KoalaBear instance.
type Permutation = poseidon2.Permutation[koalabear.Element, *koalabear.Element]

// PackedElement carries four independent KoalaBear elements per lane.
type PackedElement = packing.Vec[koalabear.Element, *koalabear.Element]

// PackedPermutation runs four independent permutations per call.
type PackedPermutation = poseidon2.Permutation[PackedElement, *PackedElement]

// Parameters16 returns the width-16 parameter set.
func Parameters16() poseidon2.Parameters[koalabear.Element] {
	return parameters(seed16, Width16, PartialRounds16, diag16())
}

// Parameters24 returns the width-24 parameter set.
func Parameters24() poseidon2.Parameters[koalabear.Element] {
	return parameters(seed24, Width24, PartialRounds24, diag24())
}

func parameters(seed []byte, width, partialRounds int, diag []koalabear.Element) poseidon2.Parameters[koalabear.Element] {
	initial, terminal, internal := constants.Derive[koalabear.Element, *koalabear.Element](
		seed, width, FullRounds, partialRounds, q)
	return poseidon2.Parameters[koalabear.Element]{
		Width:            width,
		DegreeSBox:       degreeSBox,
		ExternalInitial:  initial,
		ExternalTerminal: terminal,
		Internal:         internal,
		Diag:             diag,
		ExternalM4:       poseidon2.M4Circulant,
	}
}

// diag16 is the internal diagonal for width 16:
// (-2, 1, 2, 1/2, 3, 4, -1/2, -3, -4, 1/2^8, 1/8, 1/2^24, -1/2^8, -1/8,
// -1/16, -1/2^24).
func diag16() []koalabear.Element {
	return []koalabear.Element{
		neg(2), elem(1), elem(2), inv2k(1), elem(3), elem(4),
		negInv2k(1), neg(3), neg(4), inv2k(8), inv2k(3), inv2k(24),
		negInv2k(8), negInv2k(3), negInv2k(4), negInv2k(24),
	}
}

// diag24 is the internal diagonal for width 24:
// (-2, 1, 2, 1/2, 3, 4, -1/2, -3, -4, 1/2^8, 1/4, 1/8, 1/16, 1/32, 1/64,
// 1/2^24, -1/2^8, -1/4, -1/8, -1/16, -1/32, -1/64, -1/2^7, -1/2^24).
func diag24() []koalabear.Element {
	return []koalabear.Element{
		neg(2), elem(1), elem(2), inv2k(1), elem(3), elem(4),
		negInv2k(1), neg(3), neg(4), inv2k(8), inv2k(2), inv2k(3),
		inv2k(4), inv2k(5), inv2k(6), inv2k(24), negInv2k(8), negInv2k(2),
		negInv2k(3), negInv2k(4), negInv2k(5), negInv2k(6), negInv2k(7),
		negInv2k(24),
	}
}

func elem(v uint64) koalabear.Element {
	return koalabear.NewElement(v)
}

func neg(v uint64) koalabear.Element {
	e := koalabear.NewElement(v)
	e.Neg(&e)
	return e
}

// inv2k returns 1 / 2^k.
func inv2k(k int) koalabear.Element {
	e := koalabear.NewElement(1)
	for i := 0; i < k; i++ {
		e.Double(&e)
	}
	e.Inverse(&e)
	return e
}

func negInv2k(k int) koalabear.Element {
	e := inv2k(k)
	e.Neg(&e)
	return e
}

// New16 builds the scalar width-16 permutation.
func New16() *Permutation {
	return mustNew(Parameters16())
}

// New24 builds the scalar width-24 permutation.
func New24() *Permutation {
	return mustNew(Parameters24())
}

// NewPacked16 builds the width-16 permutation over packed lanes.
func NewPacked16() *PackedPermutation {
	return mustNewPacked(Parameters16())
}

// NewPacked24 builds the width-24 permutation over packed lanes.
func NewPacked24() *PackedPermutation {
	return mustNewPacked(Parameters24())
}

func mustNew(params poseidon2.Parameters[koalabear.Element]) *Permutation {
	p, err := poseidon2.NewPermutation[koalabear.Element, *koalabear.Element](params)
	if err != nil {
		panic("poseidon2 koalabear: " + err.Error())
	}
	return p
}

func mustNewPacked(params poseidon2.Parameters[koalabear.Element]) *PackedPermutation {
	lifted := packing.Lift[koalabear.Element, *koalabear.Element](params)
	p, err := poseidon2.NewPermutation[PackedElement, *PackedElement](lifted)
	if err != nil {
		panic("poseidon2 koalabear: " + err.Error())
	}
	return p
}
