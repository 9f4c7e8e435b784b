package babybear

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/field/babybear"
	bbposeidon2 "github.com/consensys/gnark-crypto/field/babybear/poseidon2"

	"github.com/aerius-labs/poseidon2-go/packing"
)

func randomState(tb testing.TB, width int) []babybear.Element {
	state := make([]babybear.Element, width)
	for i := range state {
		if _, err := state[i].SetRandom(); err != nil {
			tb.Fatalf("SetRandom: %v", err)
		}
	}
	return state
}

func statesEqual(a, b []babybear.Element) bool {
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}

// The permutation must agree with the gnark-crypto reference implementation
// at both widths: same round constants, same circulant external block, same
// internal diagonal.
func TestReferenceConformance(t *testing.T) {
	cases := []struct {
		width   int
		partial int
		perm    *Permutation
	}{
		{Width16, PartialRounds16, New16()},
		{Width24, PartialRounds24, New24()},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("width_%d", tc.width), func(t *testing.T) {
			ref := bbposeidon2.NewPermutation(tc.width, FullRounds, tc.partial)

			check := func(state []babybear.Element) {
				t.Helper()
				want := append([]babybear.Element(nil), state...)
				if err := ref.Permutation(want); err != nil {
					t.Fatalf("reference permutation: %v", err)
				}
				got, err := tc.perm.PermuteNew(state)
				if err != nil {
					t.Fatalf("PermuteNew: %v", err)
				}
				for i := range want {
					if !got[i].Equal(&want[i]) {
						t.Fatalf("lane %d diverges from reference: got %v want %v", i, got[i], want[i])
					}
				}
			}

			fixed := make([]babybear.Element, tc.width)
			for i := range fixed {
				fixed[i] = babybear.NewElement(uint64(i))
			}
			check(fixed)
			for i := 0; i < 10; i++ {
				check(randomState(t, tc.width))
			}
		})
	}
}

// Test that the packed output is the same as the scalar version on random
// inputs, lane by lane, for both supported widths.
func TestPackedMatchesScalar(t *testing.T) {
	cases := []struct {
		width  int
		scalar *Permutation
		packed *PackedPermutation
	}{
		{Width16, New16(), NewPacked16()},
		{Width24, New24(), NewPacked24()},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("width_%d", tc.width), func(t *testing.T) {
			var lanes [packing.Lanes][]babybear.Element
			for l := range lanes {
				lanes[l] = randomState(t, tc.width)
			}

			pstate := make([]PackedElement, tc.width)
			for i := 0; i < tc.width; i++ {
				for l := 0; l < packing.Lanes; l++ {
					pstate[i].SetLane(l, &lanes[l][i])
				}
			}
			if err := tc.packed.Permute(pstate); err != nil {
				t.Fatalf("packed Permute: %v", err)
			}

			for l := 0; l < packing.Lanes; l++ {
				want, err := tc.scalar.PermuteNew(lanes[l])
				if err != nil {
					t.Fatalf("scalar PermuteNew: %v", err)
				}
				for i := 0; i < tc.width; i++ {
					lane := pstate[i].Lane(l)
					if !lane.Equal(&want[i]) {
						t.Fatalf("lane %d element %d diverges from scalar permutation", l, i)
					}
				}
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	a := New16()
	b := New16()
	input := randomState(t, Width16)

	outA, err := a.PermuteNew(input)
	if err != nil {
		t.Fatalf("PermuteNew: %v", err)
	}
	outB, err := b.PermuteNew(input)
	if err != nil {
		t.Fatalf("PermuteNew: %v", err)
	}
	if !statesEqual(outA, outB) {
		t.Fatal("freshly constructed instances disagree")
	}
}

func TestNonDegeneracy(t *testing.T) {
	for _, tc := range []struct {
		width int
		perm  *Permutation
	}{
		{Width16, New16()},
		{Width24, New24()},
	} {
		t.Run(fmt.Sprintf("width_%d", tc.width), func(t *testing.T) {
			input := randomState(t, tc.width)
			out, err := tc.perm.PermuteNew(input)
			if err != nil {
				t.Fatalf("PermuteNew: %v", err)
			}
			if statesEqual(out, input) {
				t.Fatal("permutation acts as identity")
			}
		})
	}
}

func TestWidthMismatchRejected(t *testing.T) {
	h := New16()
	if err := h.Permute(make([]babybear.Element, Width24)); err == nil {
		t.Fatal("width-24 state accepted by width-16 instance")
	}
}

func BenchmarkPermute16(b *testing.B) {
	h := New16()
	state := randomState(b, Width16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Permute(state)
	}
}

func BenchmarkPermute24(b *testing.B) {
	h := New24()
	state := randomState(b, Width24)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Permute(state)
	}
}

func BenchmarkPackedPermute16(b *testing.B) {
	h := NewPacked16()
	state := make([]PackedElement, Width16)
	for i := range state {
		var e babybear.Element
		if _, err := e.SetRandom(); err != nil {
			b.Fatalf("SetRandom: %v", err)
		}
		state[i] = packing.Broadcast[babybear.Element, *babybear.Element](&e)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Permute(state)
	}
}
