package work

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUnit is a named no-op unit for provenance tests.
type stubUnit struct {
	name string
}

func (u stubUnit) Name() string            { return u.name }
func (u stubUnit) Priority() int           { return 50 }
func (u stubUnit) Applicable(*Target) bool { return true }

func (u stubUnit) Evaluate(context.Context, Engine, *Case) error { return nil }

// buildChain constructs root -> A -> B and returns the Case that would
// report a flag against B.
func buildChain() *Case {
	root := NewTarget(BytesSource([]byte("root content")), []byte("root content"), 1)
	caseA := &Case{ID: "case-a", Unit: stubUnit{"first_decode"}, Target: root}

	a := NewDerivedTarget(BytesSource([]byte("level one")), []byte("level one"), caseA, 2)
	caseB := &Case{ID: "case-b", Unit: stubUnit{"second_decode"}, Target: a}

	b := NewDerivedTarget(BytesSource([]byte("level two")), []byte("level two"), caseB, 3)
	return &Case{ID: "case-flag", Unit: stubUnit{"flag_scan"}, Target: b}
}

func TestReconstruct_ThreeLevelChain(t *testing.T) {
	sol := Reconstruct(buildChain(), "FLAG{provenance}")

	require.Len(t, sol.Steps, 3, "root->A->B is a three step chain")
	assert.Equal(t, "first_decode", sol.Steps[0].Unit)
	assert.Equal(t, "root content", sol.Steps[0].Target)
	assert.Equal(t, "second_decode", sol.Steps[1].Unit)
	assert.Equal(t, "level one", sol.Steps[1].Target)
	assert.Equal(t, "flag_scan", sol.Steps[2].Unit)
	assert.Equal(t, "level two", sol.Steps[2].Target)
	assert.Equal(t, "FLAG{provenance}", sol.Flag)
}

func TestReconstruct_RootOnly(t *testing.T) {
	root := NewTarget(BytesSource([]byte("flag right here")), []byte("flag right here"), 1)
	c := &Case{ID: "case-1", Unit: stubUnit{"flag_scan"}, Target: root}

	sol := Reconstruct(c, "FLAG{shallow}")

	require.Len(t, sol.Steps, 1, "a root-level flag is a length-one chain")
	assert.Equal(t, "flag_scan", sol.Steps[0].Unit)
	assert.Equal(t, "FLAG{shallow}", sol.Flag)
}

func TestSolution_String(t *testing.T) {
	sol := Reconstruct(buildChain(), "FLAG{provenance}")

	text := sol.String()
	assert.Contains(t, text, "[1] first_decode")
	assert.Contains(t, text, "[3] flag_scan")
	assert.Contains(t, text, "flag: FLAG{provenance}")
}

func TestSolution_GoldenTrace(t *testing.T) {
	sol := Reconstruct(buildChain(), "FLAG{provenance}")

	out, err := sol.JSON()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "solution_trace", []byte(out))
}
