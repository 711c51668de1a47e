package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/testutil"
	"github.com/underthemoss/construction-taxonomy/propose"
)

type stubProposer struct {
	got       propose.Request
	proposals map[string]map[string]any
	err       error
}

func (s *stubProposer) Propose(_ context.Context, req propose.Request) (map[string]map[string]any, error) {
	s.got = req
	return s.proposals, s.err
}

func TestPropose(t *testing.T) {
	stub := &stubProposer{proposals: map[string]map[string]any{
		"hydraulic_flow": {"name": "Hydraulic Flow", "type": "number", "category": "physics", "unit": "L/min"},
		"cab_type":       {"name": "Cab Type", "type": "string", "category": "brand"},
		"Bad Code":       {"name": "Bad", "type": "string", "category": "brand"},
		"bad_unit":       {"name": "Bad Unit", "type": "string", "category": "brand", "unit": "kg"},
	}}
	e, root := newEngine(t, WithProposer(stub))
	testutil.WriteRecord(t, root, testutil.Weight())

	a := e.Analyze(corpus())
	require.NoError(t, e.Propose(context.Background(), a))

	assert.Contains(t, stub.got.Library, "weight")
	assert.Len(t, stub.got.Catalog, 4)
	assert.Len(t, stub.got.Examples, 2)

	require.Len(t, a.Proposed, 2)
	cab := a.Proposed[0]
	assert.Equal(t, "cab_type", cab.Code)
	assert.Equal(t, attribute.Brand, cab.Category)
	assert.Equal(t, attribute.Specifications, cab.Subcategory)

	flow := a.Proposed[1]
	assert.Equal(t, "flow_rate", flow.Code)
	assert.Equal(t, attribute.Physics, flow.Category)
	assert.Equal(t, attribute.Flow, flow.Subcategory)
	assert.Equal(t, "m³/s", flow.Unit)
	assert.Equal(t, attribute.Number, flow.Type)

	require.Len(t, a.ProposalRejections, 2)
	assert.Equal(t, "Bad Code", a.ProposalRejections[0].Code)
	assert.Equal(t, "bad_unit", a.ProposalRejections[1].Code)
	assert.Contains(t, a.ProposalRejections[1].Reason, "unit not allowed on brand")

	assert.Len(t, a.Candidates(), 8)
}

func TestProposeFailure(t *testing.T) {
	e, _ := newEngine(t, WithProposer(&stubProposer{err: errors.New("upstream unavailable")}))

	a := e.Analyze(corpus())
	err := e.Propose(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
	assert.Empty(t, a.Proposed)
}

func TestProposeWithoutProposer(t *testing.T) {
	e, _ := newEngine(t)

	err := e.Propose(context.Background(), &Analysis{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConfigured))
}
