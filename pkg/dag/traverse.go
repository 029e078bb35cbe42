package dag

import "fmt"

// Direction selects which edges a traversal follows.
type Direction int

const (
	// Forward follows outgoing edges (children).
	Forward Direction = iota
	// Backward follows incoming edges (parents).
	Backward
)

// String returns "forward" or "backward".
func (dir Direction) String() string {
	switch dir {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(dir))
	}
}

func (d *DAG) neighbors(id string, dir Direction) []string {
	if dir == Backward {
		return d.incoming[id]
	}
	return d.outgoing[id]
}

// Walk returns every node reachable from start in the given direction, in
// breadth-first order. The start node itself is never included, even when a
// cycle leads back to it, and each node appears at most once. Returns nil if
// start doesn't exist.
//
// Walk always terminates: a visited set bounds the work to O(N+E) regardless
// of cycles.
func (d *DAG) Walk(start string, dir Direction) []string {
	if _, ok := d.nodes[start]; !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	var out []string

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range d.neighbors(id, dir) {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}

// Cycles returns one node path per back edge found by a depth-first search
// over the graph. Each path starts at the node the back edge points to and
// follows outgoing edges around the cycle, so path[len-1] → path[0] closes it.
//
// Search starts from nodes in insertion order and visits children in edge
// insertion order, so the result is deterministic. Returns nil for an
// acyclic graph.
func (d *DAG) Cycles() [][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var stack []string
	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == child {
						cycles = append(cycles, append([]string(nil), stack[i:]...))
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
		}
	}
	return cycles
}

// TopoSort returns node IDs so that every edge points from an earlier node to
// a later one. Among nodes that are ready at the same time, the one inserted
// first wins, which keeps the order stable across runs.
//
// Returns ErrGraphHasCycle if no such order exists.
func (d *DAG) TopoSort() ([]string, error) {
	indeg := make(map[string]int, len(d.nodes))
	for _, id := range d.order {
		indeg[id] = len(d.incoming[id])
	}

	done := make(map[string]bool, len(d.nodes))
	out := make([]string, 0, len(d.nodes))
	for len(out) < len(d.order) {
		next := ""
		for _, id := range d.order {
			if !done[id] && indeg[id] == 0 {
				next = id
				break
			}
		}
		if next == "" {
			return nil, ErrGraphHasCycle
		}
		done[next] = true
		out = append(out, next)
		for _, child := range d.outgoing[next] {
			indeg[child]--
		}
	}
	return out, nil
}
