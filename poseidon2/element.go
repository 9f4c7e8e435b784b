package poseidon2

// Ptr is the arithmetic capability the round logic needs from a field
// element. The pointer-receiver signatures are the ones every gnark-crypto
// element type exposes; the packed multi-lane type in the packing package
// satisfies the same surface lane-wise, which is what lets one permutation
// implementation drive scalar and packed states with bit-identical results.
type Ptr[E any] interface {
	*E
	Set(x *E) *E
	SetZero() *E
	Add(x, y *E) *E
	Mul(x, y *E) *E
	Square(x *E) *E
	Double(x *E) *E
}
