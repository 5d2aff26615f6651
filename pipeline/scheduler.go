package pipeline

import (
	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/types"
)

// Scheduler computes an execution order for a pipeline definition. It
// never fails: malformed graphs (cycles, disconnected components,
// dangling edge references) degrade to declaration order for whatever
// Kahn's algorithm could not resolve.
type Scheduler struct {
	logger *zap.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Order returns a sequence of node ids covering every declared node
// exactly once. The boolean reports whether the graph degraded (a cycle
// or unreachable component forced a declaration-order fallback).
//
// With no edges the order is simply declaration order. Otherwise Kahn's
// algorithm runs with a FIFO ready queue seeded in declaration order, so
// declaration order is the tie-break between equally ready nodes. Edge
// ids without a declared node are tolerated as extra graph vertices; they
// participate in indegree bookkeeping and appear in the order (the
// executor skips them with a warning).
func (s *Scheduler) Order(p *types.PipelineDefinition) ([]string, bool) {
	if len(p.Edges) == 0 {
		order := make([]string, 0, len(p.Nodes))
		for _, n := range p.Nodes {
			order = append(order, n.ID)
		}
		return order, false
	}

	declared := make(map[string]struct{}, len(p.Nodes))
	// vertices in deterministic order: declared nodes first, then edge-only
	// ids in first-appearance order
	vertices := make([]string, 0, len(p.Nodes))
	indegree := make(map[string]int, len(p.Nodes))
	adjacency := make(map[string][]string, len(p.Edges))

	addVertex := func(id string) {
		if _, ok := indegree[id]; !ok {
			indegree[id] = 0
			vertices = append(vertices, id)
		}
	}

	for _, n := range p.Nodes {
		declared[n.ID] = struct{}{}
		addVertex(n.ID)
	}
	for _, e := range p.Edges {
		addVertex(e.From)
		addVertex(e.To)
		adjacency[e.From] = append(adjacency[e.From], e.To)
		indegree[e.To]++
	}

	queue := make([]string, 0, len(vertices))
	for _, id := range vertices {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(vertices))
	visited := make(map[string]struct{}, len(vertices))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		visited[id] = struct{}{}

		for _, next := range adjacency[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	degraded := false
	covered := 0
	for id := range visited {
		if _, ok := declared[id]; ok {
			covered++
		}
	}
	if covered < len(p.Nodes) {
		// cycle or component unreachable from any zero-indegree vertex:
		// sweep the remainder in declaration order rather than failing
		degraded = true
		for _, n := range p.Nodes {
			if _, ok := visited[n.ID]; !ok {
				order = append(order, n.ID)
			}
		}
		s.logger.Warn("pipeline graph is cyclic or disconnected, falling back to declaration order for unresolved nodes",
			zap.String("pipeline", p.Name),
			zap.Int("unresolved", len(p.Nodes)-covered))
	}

	return order, degraded
}
