package poseidon2

// externalRounds runs one half of the external rounds: per round, add the
// full-width constant row, apply the S-box to every lane and mix through
// the external matrix. The initial and terminal halves share this
// implementation and differ only in the constants passed in.
func (h *Permutation[E, P]) externalRounds(state []E, rc [][]E) {
	for r := range rc {
		h.addRoundConstants(state, rc[r])
		for i := range state {
			h.sBox(&state[i])
		}
		h.matMulExternalInPlace(state)
	}
}

func (h *Permutation[E, P]) addRoundConstants(state, rc []E) {
	for i := range rc {
		P(&state[i]).Add(&state[i], &rc[i])
	}
}

// matMulExternalInPlace multiplies the state by the external matrix:
// circ(2,1) and circ(2,1,1) for widths 2 and 3, the 4x4 block M4 for width
// 4 and circ(2*M4, M4, ..., M4) for larger multiples of 4. The block
// itself is a per-instance parameter.
// See https://eprint.iacr.org/2023/323.pdf page 15.
func (h *Permutation[E, P]) matMulExternalInPlace(state []E) {
	switch h.params.Width {
	case 2:
		var sum E
		P(&sum).Add(&state[0], &state[1])
		P(&state[0]).Add(&state[0], &sum)
		P(&state[1]).Add(&state[1], &sum)
	case 3:
		var sum E
		P(&sum).Add(&state[0], &state[1])
		P(&sum).Add(&sum, &state[2])
		P(&state[0]).Add(&state[0], &sum)
		P(&state[1]).Add(&state[1], &sum)
		P(&state[2]).Add(&state[2], &sum)
	case 4:
		h.matMulM4(state)
	default:
		h.matMulM4(state)
		var tmp [4]E
		for i := 0; i < len(state); i += 4 {
			for j := 0; j < 4; j++ {
				P(&tmp[j]).Add(&tmp[j], &state[i+j])
			}
		}
		for i := 0; i < len(state); i += 4 {
			for j := 0; j < 4; j++ {
				P(&state[i+j]).Add(&state[i+j], &tmp[j])
			}
		}
	}
}

func (h *Permutation[E, P]) matMulM4(state []E) {
	if h.params.ExternalM4 == M4Circulant {
		matMulM4CirculantInPlace[E, P](state)
		return
	}
	matMulM4InPlace[E, P](state)
}

// matMulM4InPlace multiplies each 4-element chunk of s by
//
//	(5 7 1 3)
//	(4 6 1 1)
//	(1 3 5 7)
//	(1 1 4 6)
//
// using the addition chain from https://eprint.iacr.org/2023/323.pdf
// appendix B.
func matMulM4InPlace[E any, P Ptr[E]](s []E) {
	for i := 0; i < len(s); i += 4 {
		var t0, t1, t2, t3, t4, t5, t6, t7 E
		P(&t0).Add(&s[i], &s[i+1])   // s0+s1
		P(&t1).Add(&s[i+2], &s[i+3]) // s2+s3
		P(&t2).Double(&s[i+1])
		P(&t2).Add(&t2, &t1) // 2s1+t1
		P(&t3).Double(&s[i+3])
		P(&t3).Add(&t3, &t0) // 2s3+t0
		P(&t4).Double(&t1)
		P(&t4).Double(&t4)
		P(&t4).Add(&t4, &t3) // 4t1+t3
		P(&t5).Double(&t0)
		P(&t5).Double(&t5)
		P(&t5).Add(&t5, &t2) // 4t0+t2
		P(&t6).Add(&t3, &t5) // t3+t5
		P(&t7).Add(&t2, &t4) // t2+t4
		P(&s[i]).Set(&t6)
		P(&s[i+1]).Set(&t5)
		P(&s[i+2]).Set(&t7)
		P(&s[i+3]).Set(&t4)
	}
}

// matMulM4CirculantInPlace multiplies each 4-element chunk of s by
//
//	(2 3 1 1)
//	(1 2 3 1)
//	(1 1 2 3)
//	(3 1 1 2)
//
// the circulant block the 31-bit field instances use.
func matMulM4CirculantInPlace[E any, P Ptr[E]](s []E) {
	for i := 0; i < len(s); i += 4 {
		var t01, t23, t0123, t01123, t01233, d E
		P(&t01).Add(&s[i], &s[i+1])
		P(&t23).Add(&s[i+2], &s[i+3])
		P(&t0123).Add(&t01, &t23)
		P(&t01123).Add(&t0123, &s[i+1])
		P(&t01233).Add(&t0123, &s[i+3])
		P(&d).Double(&s[i])
		P(&s[i+3]).Add(&t01233, &d) // 3s0+s1+s2+2s3
		P(&d).Double(&s[i+2])
		P(&s[i+1]).Add(&t01123, &d) // s0+2s1+3s2+s3
		P(&s[i]).Add(&t01123, &t01) // 2s0+3s1+s2+s3
		P(&s[i+2]).Add(&t01233, &t23) // s0+s1+2s2+3s3
	}
}
