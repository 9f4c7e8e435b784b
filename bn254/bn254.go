// Package bn254 instantiates the Poseidon2 permutation over the BN254
// scalar field at width 3, with the round constants of the gnark-crypto
// reference derivation. As p - 1 is divisible by 2 and 3, the smallest
// degree D with gcd(p-1, D) = 1 is 5.
package bn254

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	frposeidon2 "github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/aerius-labs/poseidon2-go/packing"
	"github.com/aerius-labs/poseidon2-go/poseidon2"
)

const (
	Width         = 3
	FullRounds    = 8
	PartialRounds = 56

	degreeSBox = 5
)

// Permutation is the scalar width-3 instance.
type Permutation = poseidon2.Permutation[fr.Element, *fr.Element]

// PackedElement carries four independent BN254 scalars per lane.
type PackedElement = packing.Vec[fr.Element, *fr.Element]

// PackedPermutation runs four independent permutations per call.
type PackedPermutation = poseidon2.Permutation[PackedElement, *PackedElement]

// Parameters returns the width-3 parameter set. Round constants come from
// the gnark-crypto derivation for (t, rF, rP) = (3, 8, 56), split into the
// initial external half, the internal constants (lane 0 of each partial
// row) and the terminal external half.
func Parameters() poseidon2.Parameters[fr.Element] {
	ref := frposeidon2.NewParameters(Width, FullRounds, PartialRounds)
	half := FullRounds / 2

	initial := make([][]fr.Element, half)
	for i := range initial {
		initial[i] = append([]fr.Element(nil), ref.RoundKeys[i]...)
	}
	internal := make([]fr.Element, PartialRounds)
	for i := range internal {
		internal[i] = ref.RoundKeys[half+i][0]
	}
	terminal := make([][]fr.Element, half)
	for i := range terminal {
		terminal[i] = append([]fr.Element(nil), ref.RoundKeys[half+PartialRounds+i]...)
	}

	return poseidon2.Parameters[fr.Element]{
		Width:            Width,
		DegreeSBox:       degreeSBox,
		ExternalInitial:  initial,
		ExternalTerminal: terminal,
		Internal:         internal,
		Diag:             diag(),
		ExternalM4:       poseidon2.M4HorizenLabs,
		MatMulInternal:   matMulInternal3[fr.Element, *fr.Element],
	}
}

func diag() []fr.Element {
	return []fr.Element{fr.NewElement(1), fr.NewElement(1), fr.NewElement(2)}
}

// matMulInternal3 multiplies the state by
//
//	                        (2 1 1)
//	I + diag(1, 1, 2)  =    (1 2 1)
//	                        (1 1 3)
//
// with one doubling and a handful of additions. The bracketing keeps the
// lane-1/2 sum independent of the S-boxed lane 0, so that addition can
// start before the S-box finishes.
func matMulInternal3[E any, P poseidon2.Ptr[E]](state []E) {
	var sum E
	P(&sum).Add(&state[1], &state[2])
	P(&sum).Add(&state[0], &sum)

	P(&state[0]).Add(&state[0], &sum)
	P(&state[1]).Add(&state[1], &sum)
	P(&state[2]).Double(&state[2])
	P(&state[2]).Add(&state[2], &sum)
}

// NewPermutation builds the scalar width-3 permutation.
func NewPermutation() *Permutation {
	p, err := poseidon2.NewPermutation[fr.Element, *fr.Element](Parameters())
	if err != nil {
		panic("poseidon2 bn254: " + err.Error())
	}
	return p
}

// NewPackedPermutation builds the same permutation over packed lanes,
// reusing the specialized internal routine at the packed type.
func NewPackedPermutation() *PackedPermutation {
	params := packing.Lift[fr.Element, *fr.Element](Parameters())
	params.MatMulInternal = matMulInternal3[PackedElement, *PackedElement]
	p, err := poseidon2.NewPermutation[PackedElement, *PackedElement](params)
	if err != nil {
		panic("poseidon2 bn254: " + err.Error())
	}
	return p
}

// Compress is the two-to-one compression h(l, r) = permute(l, r, 0)[0]
// used for Merkle-tree hashing.
func Compress(h *Permutation, left, right *fr.Element) fr.Element {
	state := []fr.Element{*left, *right, {}}
	if err := h.Permute(state); err != nil {
		panic("poseidon2 bn254: " + err.Error())
	}
	return state[0]
}
