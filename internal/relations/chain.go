package relations

import "casegraph/internal/model"

// TraceChain lists every event reachable from start by following causal
// edges, breadth first and in edge order. start itself is never included.
// Unknown IDs are skipped.
func TraceChain(start string, byID map[string]*model.Event) []string {
	reach := []string{}
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		event, ok := byID[id]
		if !ok {
			continue
		}
		for _, next := range event.CausalRelations {
			if seen[next] {
				continue
			}
			seen[next] = true
			if _, ok := byID[next]; !ok {
				continue
			}
			reach = append(reach, next)
			queue = append(queue, next)
		}
	}
	return reach
}
