// Package babybear instantiates the Poseidon2 permutation over the
// BabyBear field (p = 2^31 - 2^27 + 1) at widths 16 and 24. BabyBear has
// 5 | p - 1, so the S-box degree is 7, the smallest D >= 3 coprime to
// p - 1. Round constants come from the gnark-crypto derivation with the
// Plonky3 round counts (8 external rounds, 13 internal at width 16, 21 at
// width 24).
package babybear

import (
	"github.com/consensys/gnark-crypto/field/babybear"
	bbposeidon2 "github.com/consensys/gnark-crypto/field/babybear/poseidon2"

	"github.com/aerius-labs/poseidon2-go/packing"
	"github.com/aerius-labs/poseidon2-go/poseidon2"
)

const (
	Width16 = 16
	Width24 = 24

	FullRounds      = 8
	PartialRounds16 = 13
	PartialRounds24 = 21

	degreeSBox = 7
)

// Permutation is a scalar BabyBear instance.
type Permutation = poseidon2.Permutation[babybear.Element, *babybear.Element]

// PackedElement carries four independent BabyBear elements per lane.
type PackedElement = packing.Vec[babybear.Element, *babybear.Element]

// PackedPermutation runs four independent permutations per call.
type PackedPermutation = poseidon2.Permutation[PackedElement, *PackedElement]

// Parameters16 returns the width-16 parameter set.
func Parameters16() poseidon2.Parameters[babybear.Element] {
	return parameters(Width16, PartialRounds16, diag16())
}

// Parameters24 returns the width-24 parameter set.
func Parameters24() poseidon2.Parameters[babybear.Element] {
	return parameters(Width24, PartialRounds24, diag24())
}

func parameters(width, partialRounds int, diag []babybear.Element) poseidon2.Parameters[babybear.Element] {
	ref := bbposeidon2.NewParameters(width, FullRounds, partialRounds)
	half := FullRounds / 2

	initial := make([][]babybear.Element, half)
	for i := range initial {
		initial[i] = append([]babybear.Element(nil), ref.RoundKeys[i]...)
	}
	internal := make([]babybear.Element, partialRounds)
	for i := range internal {
		internal[i] = ref.RoundKeys[half+i][0]
	}
	terminal := make([][]babybear.Element, half)
	for i := range terminal {
		terminal[i] = append([]babybear.Element(nil), ref.RoundKeys[half+partialRounds+i]...)
	}

	return poseidon2.Parameters[babybear.Element]{
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
// (-2, 1, 2, 1/2, 3, 4, -1/2, -3, -4, 1/2^8, 1/4, 1/8, 1/2^27, -1/2^8,
// -1/16, -1/2^27). Small values and powers of two keep the per-round
// multiplications cheap.
func diag16() []babybear.Element {
	return []babybear.Element{
		neg(2), elem(1), elem(2), inv2k(1), elem(3), elem(4),
		negInv2k(1), neg(3), neg(4), inv2k(8), inv2k(2), inv2k(3),
		inv2k(27), negInv2k(8), negInv2k(4), negInv2k(27),
	}
}

// diag24 is the internal diagonal for width 24:
// (-2, 1, 2, 1/2, 3, 4, -1/2, -3, -4, 1/2^8, 1/4, 1/8, 1/16, 1/2^7,
// 1/2^9, 1/2^27, -1/2^8, -1/4, -1/8, -1/16, -1/32, -1/64, -1/2^7,
// -1/2^27).
func diag24() []babybear.Element {
	return []babybear.Element{
		neg(2), elem(1), elem(2), inv2k(1), elem(3), elem(4),
		negInv2k(1), neg(3), neg(4), inv2k(8), inv2k(2), inv2k(3),
		inv2k(4), inv2k(7), inv2k(9), inv2k(27), negInv2k(8), negInv2k(2),
		negInv2k(3), negInv2k(4), negInv2k(5), negInv2k(6), negInv2k(7),
		negInv2k(27),
	}
}

func elem(v uint64) babybear.Element {
	return babybear.NewElement(v)
}

func neg(v uint64) babybear.Element {
	e := babybear.NewElement(v)
	e.Neg(&e)
	return e
}

// inv2k returns 1 / 2^k.
func inv2k(k int) babybear.Element {
	e := babybear.NewElement(1)
	for i := 0; i < k; i++ {
		e.Double(&e)
	}
	e.Inverse(&e)
	return e
}

func negInv2k(k int) babybear.Element {
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

func mustNew(params poseidon2.Parameters[babybear.Element]) *Permutation {
	p, err := poseidon2.NewPermutation[babybear.Element, *babybear.Element](params)
	if err != nil {
		panic("poseidon2 babybear: " + err.Error())
	}
	return p
}

func mustNewPacked(params poseidon2.Parameters[babybear.Element]) *PackedPermutation {
	lifted := packing.Lift[babybear.Element, *babybear.Element](params)
	p, err := poseidon2.NewPermutation[PackedElement, *PackedElement](lifted)
	if err != nil {
		panic("poseidon2 babybear: " + err.Error())
	}
	return p
}
