// Package packing provides a packed-lane field element: Lanes independent
// field elements that move through one pass of the permutation round logic
// together. Vec satisfies the same arithmetic capability as a scalar
// element, so the engine in the poseidon2 package instantiates over it
// unchanged and lane i of a packed run is bit-identical to a scalar run on
// lane i's state.
//
// The lane loops are plain Go. Four 32-bit field words fill one 128-bit
// vector register, so the compiler or a future assembly backend can map
// them to vector instructions; on targets without such support this
// portable path is the sanctioned functional fallback, never an error.
package packing

import "github.com/aerius-labs/poseidon2-go/poseidon2"

// Lanes is the number of independent field elements per Vec.
const Lanes = 4

// Vec holds Lanes independent field elements of type E.
type Vec[E any, P poseidon2.Ptr[E]] struct {
	L [Lanes]E
}

// Broadcast replicates a single field element into every lane.
func Broadcast[E any, P poseidon2.Ptr[E]](x *E) Vec[E, P] {
	var v Vec[E, P]
	for i := range v.L {
		P(&v.L[i]).Set(x)
	}
	return v
}

// Lane returns a copy of lane i.
func (z *Vec[E, P]) Lane(i int) E {
	return z.L[i]
}

// SetLane sets lane i to x.
func (z *Vec[E, P]) SetLane(i int, x *E) {
	P(&z.L[i]).Set(x)
}

func (z *Vec[E, P]) Set(x *Vec[E, P]) *Vec[E, P] {
	for i := range z.L {
		P(&z.L[i]).Set(&x.L[i])
	}
	return z
}

func (z *Vec[E, P]) SetZero() *Vec[E, P] {
	for i := range z.L {
		P(&z.L[i]).SetZero()
	}
	return z
}

func (z *Vec[E, P]) Add(x, y *Vec[E, P]) *Vec[E, P] {
	for i := range z.L {
		P(&z.L[i]).Add(&x.L[i], &y.L[i])
	}
	return z
}

func (z *Vec[E, P]) Mul(x, y *Vec[E, P]) *Vec[E, P] {
	for i := range z.L {
		P(&z.L[i]).Mul(&x.L[i], &y.L[i])
	}
	return z
}

func (z *Vec[E, P]) Square(x *Vec[E, P]) *Vec[E, P] {
	for i := range z.L {
		P(&z.L[i]).Square(&x.L[i])
	}
	return z
}

func (z *Vec[E, P]) Double(x *Vec[E, P]) *Vec[E, P] {
	for i := range z.L {
		P(&z.L[i]).Double(&x.L[i])
	}
	return z
}

// Lift broadcasts every constant of a scalar parameter set into packed
// form, so the packed permutation shares one immutable constant store per
// instance instead of re-broadcasting on the hot path. A specialized
// MatMulInternal strategy does not carry over; field packages supply the
// packed strategy from the same generic routine they use for scalars.
func Lift[E any, P poseidon2.Ptr[E]](p poseidon2.Parameters[E]) poseidon2.Parameters[Vec[E, P]] {
	return poseidon2.Parameters[Vec[E, P]]{
		Width:            p.Width,
		DegreeSBox:       p.DegreeSBox,
		ExternalInitial:  liftRows[E, P](p.ExternalInitial),
		ExternalTerminal: liftRows[E, P](p.ExternalTerminal),
		Internal:         liftRow[E, P](p.Internal),
		Diag:             liftRow[E, P](p.Diag),
		ExternalM4:       p.ExternalM4,
	}
}

func liftRow[E any, P poseidon2.Ptr[E]](row []E) []Vec[E, P] {
	out := make([]Vec[E, P], len(row))
	for i := range row {
		out[i] = Broadcast[E, P](&row[i])
	}
	return out
}

func liftRows[E any, P poseidon2.Ptr[E]](rows [][]E) [][]Vec[E, P] {
	out := make([][]Vec[E, P], len(rows))
	for i := range rows {
		out[i] = liftRow[E, P](rows[i])
	}
	return out
}
