package metrics

import (
	"sort"
	"time"

	"github.com/sells-group/ops-dashboard/internal/model"
)

// NodeCount is the firing count of one policy node.
type NodeCount struct {
	Node  string `json:"node"`
	Fires int    `json:"fires"`
}

// GuardrailCount is the entry count for one guardrail-fired flag value,
// labeled for display.
type GuardrailCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PolicyStatus summarizes the policy-firing log over the trailing window of
// the given length ending at the log's own maximum timestamp. The reference
// point is deliberately the log's, not the order table's: the two feeds can
// lag each other. Returns firing counts per node sorted descending and
// guardrail flag counts labeled Yes/No (observed values only, No first).
func PolicyStatus(log []model.PolicyFiring, days int) ([]NodeCount, []GuardrailCount) {
	var end time.Time
	for _, f := range log {
		if f.Timestamp.After(end) {
			end = f.Timestamp
		}
	}
	if end.IsZero() {
		return nil, nil
	}
	cutoff := end.AddDate(0, 0, -days)

	nodeFires := make(map[string]int)
	guardrail := make(map[bool]int)
	for _, f := range log {
		if f.Timestamp.Before(cutoff) {
			continue
		}
		nodeFires[f.Node]++
		guardrail[f.GuardrailFired]++
	}

	nodes := make([]NodeCount, 0, len(nodeFires))
	for node, fires := range nodeFires {
		nodes = append(nodes, NodeCount{Node: node, Fires: fires})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Fires != nodes[j].Fires {
			return nodes[i].Fires > nodes[j].Fires
		}
		return nodes[i].Node < nodes[j].Node
	})

	var guards []GuardrailCount
	if n := guardrail[false]; n > 0 {
		guards = append(guards, GuardrailCount{Label: "No", Count: n})
	}
	if n := guardrail[true]; n > 0 {
		guards = append(guards, GuardrailCount{Label: "Yes", Count: n})
	}
	return nodes, guards
}
