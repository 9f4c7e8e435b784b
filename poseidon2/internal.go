package poseidon2

// internalRounds runs all internal rounds. Each round adds the round
// constant to lane 0 only, applies the S-box to lane 0 only and mixes the
// state through I + diag(d), either via the generic diagonal routine or a
// field-specialized strategy supplied with the parameters.
func (h *Permutation[E, P]) internalRounds(state []E) {
	matMul := h.params.MatMulInternal
	if matMul == nil {
		matMul = h.matMulInternalInPlace
	}
	for r := range h.params.Internal {
		P(&state[0]).Add(&state[0], &h.params.Internal[r])
		h.sBox(&state[0])
		matMul(state)
	}
}

// matMulInternalInPlace multiplies the state by I + diag(d): every output
// lane is the sum of all lanes plus d[i] times its own lane. The sum over
// lanes 1..w-1 does not depend on the S-boxed lane 0, so its additions can
// overlap the S-box.
func (h *Permutation[E, P]) matMulInternalInPlace(state []E) {
	var sum E
	P(&sum).Set(&state[1])
	for i := 2; i < len(state); i++ {
		P(&sum).Add(&sum, &state[i])
	}
	P(&sum).Add(&state[0], &sum)
	for i := range state {
		P(&state[i]).Mul(&state[i], &h.params.Diag[i])
		P(&state[i]).Add(&state[i], &sum)
	}
}
