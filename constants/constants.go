// Package constants derives Poseidon2 round-constant sets from a seed by
// expanding SHAKE128 output into field elements.
package constants

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Domain separation prefix mixed into the SHAKE state before the seed.
const derivationContext = "Poseidon2"

// element is the construction surface Derive needs; the modulus is passed
// explicitly since derivation happens on canonical values.
type element[E any] interface {
	*E
	SetUint64(v uint64) *E
}

// Derive expands seed through SHAKE128 into the round-constant store for
// one permutation instance: nbFull full-width rows split into initial and
// terminal halves around nbPartial single internal constants, in round
// order. Each constant consumes eight squeezed bytes interpreted big-endian
// and reduced mod q. Derivation is deterministic: the same seed always
// yields the same constants.
func Derive[E any, P element[E]](seed []byte, width, nbFull, nbPartial int, q uint64) (initial, terminal [][]E, internal []E) {
	shake := sha3.NewShake128()
	shake.Write([]byte(derivationContext))
	shake.Write(seed)

	next := func() (e E) {
		var buf [8]byte
		shake.Read(buf[:])
		P(&e).SetUint64(binary.BigEndian.Uint64(buf[:]) % q)
		return e
	}
	row := func() []E {
		r := make([]E, width)
		for i := range r {
			r[i] = next()
		}
		return r
	}

	half := nbFull / 2
	initial = make([][]E, half)
	for i := range initial {
		initial[i] = row()
	}
	internal = make([]E, nbPartial)
	for i := range internal {
		internal[i] = next()
	}
	terminal = make([][]E, nbFull-half)
	for i := range terminal {
		terminal[i] = row()
	}
	return initial, terminal, internal
}
