// Package poseidon2 implements the Poseidon2 permutation generically over
// any element type carrying gnark-crypto style pointer arithmetic.
//
// The permutation alternates two kinds of rounds: external rounds apply a
// round constant, an S-box and a fixed block-structured linear layer to
// every lane, internal rounds touch only lane 0 with the constant and the
// S-box and then mix through the cheaper I + diag(d) matrix. Parameters
// (round constants, diagonal, S-box degree) are per field and per width and
// are supplied at construction; an instance is immutable afterwards and
// safe to share across goroutines.
package poseidon2

import "errors"

var (
	// ErrInvalidSizeBuffer is returned when the state slice does not match
	// the permutation width.
	ErrInvalidSizeBuffer = errors.New("the size of the state should match the width of the permutation")

	ErrUnsupportedWidth      = errors.New("width must be 2, 3 or a multiple of 4")
	ErrUnsupportedSBoxDegree = errors.New("sbox degree must be 3, 5, 7 or 17")
	ErrUnsupportedM4Block    = errors.New("unknown external 4x4 block")
	ErrInvalidRoundConstants = errors.New("round constant shape does not match the width and round counts")
	ErrInvalidDiagonal       = errors.New("internal diagonal length does not match the width")
)

// M4Block selects the 4x4 block of the external matrix for widths that are
// a multiple of 4. Both blocks share the circ(2*M4, M4, ..., M4) outer
// structure; which block is in force is part of the per-field parameter
// set, not a free choice.
type M4Block int

const (
	// M4HorizenLabs is the block (5 7 1 3 / 4 6 1 1 / 1 3 5 7 / 1 1 4 6)
	// used by the BN254 instance.
	M4HorizenLabs M4Block = iota
	// M4Circulant is circ(2, 3, 1, 1), used by the 31-bit field instances.
	M4Circulant
)

// Parameters describes one Poseidon2 instance. The number of external
// rounds is 2*len(ExternalInitial) (the initial and terminal halves must
// have equal length) and the number of internal rounds is len(Internal).
type Parameters[E any] struct {
	Width      int
	DegreeSBox int

	// External round constants, one full-width row per round, split into
	// the half applied before the internal rounds and the half applied
	// after.
	ExternalInitial  [][]E
	ExternalTerminal [][]E

	// Internal round constants, one per internal round, added to lane 0
	// only.
	Internal []E

	// Diag defines the internal mixing matrix I + diag(Diag).
	Diag []E

	// ExternalM4 selects the external 4x4 block for widths >= 4.
	ExternalM4 M4Block

	// MatMulInternal, when non-nil, replaces the generic diagonal
	// multiplication with a field/width specialized routine. It must
	// compute exactly the I + diag(Diag) product.
	MatMulInternal func(state []E)
}

// Permutation is an immutable Poseidon2 instance. It holds no per-call
// state.
type Permutation[E any, P Ptr[E]] struct {
	params Parameters[E]
}

// NewPermutation validates the parameter shape and takes ownership of the
// constants. A mismatch between the constant arrays and the width or round
// counts is a construction-time contract violation: silently truncating or
// padding would yield a permutation that is not the specified primitive.
func NewPermutation[E any, P Ptr[E]](params Parameters[E]) (*Permutation[E, P], error) {
	w := params.Width
	if w < 2 || (w > 3 && w%4 != 0) {
		return nil, ErrUnsupportedWidth
	}
	switch params.DegreeSBox {
	case 3, 5, 7, 17:
	default:
		return nil, ErrUnsupportedSBoxDegree
	}
	switch params.ExternalM4 {
	case M4HorizenLabs, M4Circulant:
	default:
		return nil, ErrUnsupportedM4Block
	}
	if len(params.ExternalInitial) != len(params.ExternalTerminal) {
		return nil, ErrInvalidRoundConstants
	}
	for _, row := range params.ExternalInitial {
		if len(row) != w {
			return nil, ErrInvalidRoundConstants
		}
	}
	for _, row := range params.ExternalTerminal {
		if len(row) != w {
			return nil, ErrInvalidRoundConstants
		}
	}
	if len(params.Diag) != w {
		return nil, ErrInvalidDiagonal
	}
	return &Permutation[E, P]{params: params}, nil
}

// Width returns the permutation width.
func (h *Permutation[E, P]) Width() int {
	return h.params.Width
}

// Permute applies the permutation to state in place. The only failure mode
// is a state slice whose length does not match the width.
func (h *Permutation[E, P]) Permute(state []E) error {
	if len(state) != h.params.Width {
		return ErrInvalidSizeBuffer
	}

	// Initial linear layer, cf https://eprint.iacr.org/2023/323.pdf page 5.
	h.matMulExternalInPlace(state)

	h.externalRounds(state, h.params.ExternalInitial)
	h.internalRounds(state)
	h.externalRounds(state, h.params.ExternalTerminal)
	return nil
}

// PermuteNew applies the permutation to a copy of state and returns it,
// leaving the input untouched.
func (h *Permutation[E, P]) PermuteNew(state []E) ([]E, error) {
	out := make([]E, len(state))
	copy(out, state)
	if err := h.Permute(out); err != nil {
		return nil, err
	}
	return out, nil
}

// sBox raises *x to the S-box degree using the short Square/Mul chains.
func (h *Permutation[E, P]) sBox(x *E) {
	var t E
	P(&t).Set(x)
	switch h.params.DegreeSBox {
	case 3:
		P(x).Square(x)
		P(x).Mul(x, &t)
	case 5:
		P(x).Square(x)
		P(x).Square(x)
		P(x).Mul(x, &t)
	case 7:
		P(x).Square(x)
		P(x).Mul(x, &t)
		P(x).Square(x)
		P(x).Mul(x, &t)
	case 17:
		P(x).Square(x)
		P(x).Square(x)
		P(x).Square(x)
		P(x).Square(x)
		P(x).Mul(x, &t)
	}
}
