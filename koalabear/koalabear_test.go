package koalabear

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/aerius-labs/poseidon2-go/packing"
)

func randomState(tb testing.TB, width int) []koalabear.Element {
	state := make([]koalabear.Element, width)
	for i := range state {
		if _, err := state[i].SetRandom(); err != nil {
			tb.Fatalf("SetRandom: %v", err)
		}
	}
	return state
}

func statesEqual(a, b []koalabear.Element) bool {
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}

// The packed instances run on the portable lane fallback; they must still
// be functionally identical to the scalar permutation, lane by lane.
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
			var lanes [packing.Lanes][]koalabear.Element
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

// Constant derivation is seeded, so two parameter sets for the same width
// must be identical, and the two widths must not share constants.
func TestDerivedConstantsStable(t *testing.T) {
	a := Parameters16()
	b := Parameters16()
	for r := range a.ExternalInitial {
		if !statesEqual(a.ExternalInitial[r], b.ExternalInitial[r]) {
			t.Fatalf("initial round %d differs between derivations", r)
		}
	}
	for r := range a.ExternalTerminal {
		if !statesEqual(a.ExternalTerminal[r], b.ExternalTerminal[r]) {
			t.Fatalf("terminal round %d differs between derivations", r)
		}
	}
	if !statesEqual(a.Internal, b.Internal) {
		t.Fatal("internal constants differ between derivations")
	}

	c := Parameters24()
	if a.ExternalInitial[0][0].Equal(&c.ExternalInitial[0][0]) {
		t.Fatal("width-16 and width-24 derivations share their first constant")
	}
}

func TestDeterminism(t *testing.T) {
	a := New24()
	b := New24()
	input := randomState(t, Width24)

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

func BenchmarkPermute16(b *testing.B) {
	h := New16()
	state := randomState(b, Width16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Permute(state)
	}
}
