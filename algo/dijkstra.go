package algo

import (
	"container/heap"
	"fmt"
	"slices"

	"tariff-map-system/model"
)

// PathResult 最短路搜索结果
// Path 是节点 ID 序列; Modes 和 Dists 对应每一段 (长度都是 len(Path)-1)
type PathResult struct {
	Path   []string  // 节点 ID 序列, 至少含起点
	Modes  []int     // 每段的运输方式位掩码
	Dists  []float64 // 每段的大圆距离 (公里)
	Weight float64   // 总成本 (Σ 距离×系数)
}

// legInfo 到达某节点所走的最后一条边
type legInfo struct {
	mode   int
	distKm float64
}

// PriorityQueueItem 优先队列中的元素
type PriorityQueueItem struct {
	NodeID string
	Weight float64 // 从起点到该节点的累计成本
	Seq    int     // 入队序号
	Index  int     // 在堆中的索引
}

// PriorityQueue 实现 heap.Interface 接口的优先队列
// 成本相等时先入队者先出。邻接枚举顺序固定 (公路→海运→空运, ID 升序)，
// 加上这条规则，同样的输入永远得到同一条路线
type PriorityQueue []*PriorityQueueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Weight != pq[j].Weight {
		return pq[i].Weight < pq[j].Weight
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*PriorityQueueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // 避免内存泄漏
	item.Index = -1 // 标记为已移除
	*pq = old[0 : n-1]
	return item
}

// Dijkstra 在隐式图上寻找 source 到 target 的最小成本路径
// 懒删除版本: 不做 decrease-key，发现更优路径就直接再入队，
// 出队时发现已访问过的直接跳过；弹出终点即停，不会多扩展
// 找不到路径时返回 ErrNoRoute
func (g *Graph) Dijkstra(source, target *model.Node) (PathResult, error) {
	// 起终点相同是合法的退化输入: 单节点路径, 零段零成本
	if source.ID == target.ID {
		return PathResult{Path: []string{source.ID}}, nil
	}

	// 只给实际碰到的节点记账，没出现在 dist 里的节点视为无穷远
	dist := make(map[string]float64)
	prev := make(map[string]string)
	prevLeg := make(map[string]legInfo)
	visited := make(map[string]bool)

	dist[source.ID] = 0

	seq := 0
	pq := make(PriorityQueue, 0)
	heap.Init(&pq)
	heap.Push(&pq, &PriorityQueueItem{NodeID: source.ID, Weight: 0, Seq: seq})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*PriorityQueueItem)
		currentID := current.NodeID

		// 懒删除留下的过期条目，跳过
		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		// 弹出终点时它的成本已经是最优，提前退出
		if currentID == target.ID {
			break
		}

		node, ok := g.cat.Node(currentID)
		if !ok {
			continue
		}

		g.ForNeighbors(node, func(to *model.Node, mode int, distKm float64) {
			if visited[to.ID] {
				return
			}

			newWeight := dist[currentID] + distKm*g.factors.Factor(mode)

			old, seen := dist[to.ID]
			// 严格小于才更新: 成本打平时保留先发现的那条路
			if seen && newWeight >= old {
				return
			}
			dist[to.ID] = newWeight
			prev[to.ID] = currentID
			prevLeg[to.ID] = legInfo{mode: mode, distKm: distKm}

			seq++
			heap.Push(&pq, &PriorityQueueItem{NodeID: to.ID, Weight: newWeight, Seq: seq})
		})
	}

	if !visited[target.ID] {
		return PathResult{}, fmt.Errorf("%w: %s -> %s", ErrNoRoute, source.ID, target.ID)
	}

	// 回溯路径
	path := []string{}
	for at := target.ID; at != ""; at = prev[at] {
		path = append(path, at)
		if at == source.ID {
			break
		}
	}
	slices.Reverse(path)

	result := PathResult{
		Path:   path,
		Modes:  make([]int, 0, len(path)-1),
		Dists:  make([]float64, 0, len(path)-1),
		Weight: dist[target.ID],
	}
	for i := 1; i < len(path); i++ {
		leg := prevLeg[path[i]]
		result.Modes = append(result.Modes, leg.mode)
		result.Dists = append(result.Dists, leg.distKm)
	}
	return result, nil
}
