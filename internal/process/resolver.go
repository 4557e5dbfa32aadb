package process

import (
	"sort"

	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

// CurrentState derives the transaction's state from its last transition.
// It returns the empty string when the transaction has no transitions yet
// or its last transition is not an edge of this graph.
func CurrentState(g *Graph, tx *transaction.Transaction) string {
	if tx == nil || tx.LastTransition == "" {
		return ""
	}
	return g.targets[tx.LastTransition]
}

// TransitionsLeadingTo collects every transition name whose destination is
// the target state. Multiple source states can fan into the same
// destination, so the result may contain edges out of several states.
func TransitionsLeadingTo(g *Graph, targetState string) []string {
	var names []string
	for name, dst := range g.targets {
		if dst == targetState {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HasPassedState reports whether the transaction has ever been in the
// target state, even if it has since moved further. It scans the full
// ordered history, so the answer is monotonic: once true, appending later
// transitions never makes it false.
func HasPassedState(g *Graph, targetState string, tx *transaction.Transaction) bool {
	if tx == nil {
		return false
	}
	for _, tr := range tx.Transitions {
		if g.targets[tr.Name] == targetState {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the named transition may only be requested
// through the server-mediated path.
func IsPrivileged(g *Graph, transitionName string) bool {
	return g.transitions[transitionName].Privileged
}
