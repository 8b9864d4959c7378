package algo

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-map-system/model"
)

func TestPriorityQueue_TieBreakBySequence(t *testing.T) {
	pq := make(PriorityQueue, 0)
	heap.Init(&pq)

	// 权重相同时按入队序号出队, 权重不同时按权重
	heap.Push(&pq, &PriorityQueueItem{NodeID: "b", Weight: 5, Seq: 2})
	heap.Push(&pq, &PriorityQueueItem{NodeID: "a", Weight: 5, Seq: 1})
	heap.Push(&pq, &PriorityQueueItem{NodeID: "c", Weight: 1, Seq: 3})
	heap.Push(&pq, &PriorityQueueItem{NodeID: "d", Weight: 9, Seq: 0})

	var order []string
	for pq.Len() > 0 {
		order = append(order, heap.Pop(&pq).(*PriorityQueueItem).NodeID)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, order)
}

func TestDijkstra_SameNodeDegenerate(t *testing.T) {
	cat := newTestCatalog(t)
	g := NewGraph(cat, model.UnitFactors())

	anchor, err := cat.CountryAnchor("JPN")
	require.NoError(t, err)

	res, err := g.Dijkstra(anchor, anchor)
	require.NoError(t, err)
	assert.Equal(t, []string{"JPN"}, res.Path)
	assert.Empty(t, res.Modes)
	assert.Empty(t, res.Dists)
	assert.Zero(t, res.Weight)
}

func TestDijkstra_ResultShape(t *testing.T) {
	cat := newTestCatalog(t)
	f := model.NewModeFactors(ptr(1), ptr(0.2), ptr(10))
	g := NewGraph(cat, f)

	source, err := cat.CountryAnchor("USA")
	require.NoError(t, err)
	target, err := cat.CountryAnchor("CHN")
	require.NoError(t, err)

	res, err := g.Dijkstra(source, target)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(res.Path), 2)
	assert.Equal(t, "USA", res.Path[0])
	assert.Equal(t, "CHN", res.Path[len(res.Path)-1])
	require.Len(t, res.Modes, len(res.Path)-1)
	require.Len(t, res.Dists, len(res.Path)-1)

	// 总成本必须等于各段 距离×系数 之和
	var weight float64
	for i, mode := range res.Modes {
		assert.Greater(t, res.Dists[i], 0.0)
		weight += res.Dists[i] * f.Factor(mode)
	}
	assert.InDelta(t, weight, res.Weight, 1e-9)
}

func TestDijkstra_Unreachable(t *testing.T) {
	cat := newTestCatalog(t)
	g := NewGraph(cat, model.NewModeFactors(nil, nil, nil))

	source, err := cat.CountryAnchor("DEU")
	require.NoError(t, err)
	target, err := cat.CountryAnchor("JPN")
	require.NoError(t, err)

	_, err = g.Dijkstra(source, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRoute)
}
