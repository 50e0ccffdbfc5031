package routing

import (
	"container/heap"
	"time"

	"github.com/kilianp07/cargo-agent/core/logger"
	"github.com/kilianp07/cargo-agent/core/model"
)

// FindPath returns the minimum-time sequence of node ids from startNodeID to
// endNodeID over the grid's directed connections, both endpoints included.
// When several nodes share the smallest running time the selection order is
// arbitrary; the returned path is still time-minimal. An empty slice means
// no route exists and the caller should abandon the movement step, it is not
// an error. startNodeID == endNodeID yields a single-element path.
func FindPath(grid model.Grid, startNodeID, endNodeID int, log logger.Logger) []int {
	nodes := grid.NodeByID()
	if _, ok := nodes[startNodeID]; !ok {
		return nil
	}
	if _, ok := nodes[endNodeID]; !ok {
		return nil
	}
	if startNodeID == endNodeID {
		return []int{startNodeID}
	}

	edges := grid.EdgeByID()
	outgoing := grid.OutgoingConnections()

	times := make(map[int]time.Duration, len(nodes))
	prev := make(map[int]int)
	settled := make(map[int]bool, len(nodes))

	pq := &nodeQueue{}
	heap.Init(pq)
	heap.Push(pq, nodeItem{id: startNodeID, time: 0})
	times[startNodeID] = 0

	for pq.Len() > 0 {
		current := heap.Pop(pq).(nodeItem)
		if settled[current.id] {
			continue
		}
		settled[current.id] = true
		if current.id == endNodeID {
			break
		}

		for _, conn := range outgoing[current.id] {
			neighbor := conn.SecondNodeID
			if settled[neighbor] {
				continue
			}
			if _, ok := nodes[neighbor]; !ok {
				log.Warnf("connection %d references unknown node %d, skipping", conn.ID, neighbor)
				continue
			}
			edge, ok := edges[conn.EdgeID]
			if !ok {
				log.Warnf("edge %d not found, skipping connection %d", conn.EdgeID, conn.ID)
				continue
			}
			candidate := current.time + edge.Time
			if best, known := times[neighbor]; !known || candidate < best {
				times[neighbor] = candidate
				prev[neighbor] = current.id
				heap.Push(pq, nodeItem{id: neighbor, time: candidate})
			}
		}
	}

	if !settled[endNodeID] {
		return nil
	}

	path := reconstruct(prev, startNodeID, endNodeID)
	if len(path) == 0 || path[0] != startNodeID || path[len(path)-1] != endNodeID {
		log.Errorf("reconstructed path does not connect %d to %d", startNodeID, endNodeID)
		return nil
	}
	return path
}

func reconstruct(prev map[int]int, startNodeID, endNodeID int) []int {
	path := []int{endNodeID}
	current := endNodeID
	for current != startNodeID {
		p, ok := prev[current]
		if !ok {
			return nil
		}
		current = p
		path = append([]int{current}, path...)
	}
	return path
}

type nodeItem struct {
	id   int
	time time.Duration
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].time < q[j].time }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
