package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteograph/pint/pkg/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), DataFileName))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// makeGraph builds a small three node graph with uniform features.
func makeGraph(id string, targets map[string]float64, bias float64) *graph.Graph {
	g := graph.New(id, targets)

	for i, key := range []string{"A:1", "A:2", "B:1"} {
		n := &graph.Node{Key: key, Features: map[string][]float64{}}
		n.SetScalar("charge", bias+float64(i))
		n.Features["restype"] = []float64{1, 0}
		g.AddNode(n)
	}

	for _, pair := range [][2]string{{"A:1", "A:2"}, {"A:2", "B:1"}} {
		e := &graph.Edge{Key1: pair[0], Key2: pair[1], Features: map[string][]float64{}}
		e.SetScalar(graph.FeatEdgeDistance, 2.0)
		e.SetScalar(graph.FeatEdgeType, graph.EdgeInternal)
		g.AddEdge(e)
	}
	return g
}

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())

	ids, err := s.EntryIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSaveGraphRoundtrip(t *testing.T) {
	s := newTestStore(t)

	g := makeGraph("1xyz:A-B", map[string]float64{"irmsd": 4.2, "binary": 1}, 0)
	require.NoError(t, s.SaveGraph(g))

	ids, err := s.EntryIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"1xyz:A-B"}, ids)

	ok, err := s.Has("1xyz:A-B")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Has("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	targets, err := s.Targets("1xyz:A-B")
	require.NoError(t, err)
	assert.InDelta(t, 4.2, targets["irmsd"], 1e-9)
	assert.InDelta(t, 1.0, targets["binary"], 1e-9)
}

func TestSaveGraphReplaces(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveGraph(makeGraph("e1", map[string]float64{"irmsd": 1, "old": 9}, 0)))
	require.NoError(t, s.SaveGraph(makeGraph("e1", map[string]float64{"irmsd": 2}, 0)))

	ids, err := s.EntryIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	targets, err := s.Targets("e1")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, targets["irmsd"], 1e-9)
	// Old targets do not survive a replace.
	_, hasOld := targets["old"]
	assert.False(t, hasOld)
}

func TestSaveGraphValidation(t *testing.T) {
	s := newTestStore(t)

	assert.Error(t, s.SaveGraph(nil))
	assert.Error(t, s.SaveGraph(graph.New("", nil)))
	assert.Error(t, s.SaveGraph(graph.New("empty", nil)))

	var uninitialized *Store
	assert.Error(t, uninitialized.SaveGraph(makeGraph("e", nil, 0)))
}

func TestSaveAll(t *testing.T) {
	s := newTestStore(t)

	graphs := []*graph.Graph{
		makeGraph("e1", nil, 0),
		makeGraph("e2", nil, 1),
	}
	require.NoError(t, s.SaveAll(graphs))

	ids, err := s.EntryIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveGraph(makeGraph("e1", map[string]float64{"irmsd": 1}, 0)))
	require.NoError(t, s.SaveGraph(makeGraph("e2", map[string]float64{"irmsd": 2, "binary": 0}, 0)))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, map[string]int{"irmsd": 2, "binary": 1}, stats.Targets)
	assert.Equal(t, s.Path(), stats.Path)
}
