package runtime

import (
	"context"
	"fmt"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
)

// Recovery resolves a node by replaying actions from the root on the
// service's direct endpoint. It is only used after structural lookup
// failed, and it never retries on its own.
type Recovery struct {
	svc ports.NodeService
}

// NewRecovery creates a recovery strategy over svc.
func NewRecovery(svc ports.NodeService) *Recovery {
	return &Recovery{svc: svc}
}

// Recover asks the direct endpoint for addr. The replayed actions are the
// labels the user recorded while stepping along addr; steps without a record
// use the label written in addr.
func (r *Recovery) Recover(ctx context.Context, sessionID string, addr domain.Address, log []domain.Step) (domain.TreeNode, error) {
	actions := ReplaySequence(addr, log)
	node, err := r.svc.DirectNode(ctx, sessionID, addr, actions)
	if err != nil {
		return domain.TreeNode{}, fmt.Errorf("%w: %s: %w", domain.ErrNodeNotFound, addr.Display(), err)
	}
	node.Address = addr
	return node, nil
}

// ReplaySequence returns one action label per action segment of addr.
func ReplaySequence(addr domain.Address, log []domain.Step) []string {
	recorded := make(map[string]string, len(log))
	for _, s := range log {
		if _, ok := recorded[s.Address.Key()]; !ok {
			recorded[s.Address.Key()] = s.Action
		}
	}

	var out []string
	for i, seg := range addr {
		if seg.Kind != domain.SegmentAction {
			continue
		}
		if label, ok := recorded[addr[:i+1].Key()]; ok {
			out = append(out, label)
		} else {
			out = append(out, seg.Value)
		}
	}
	return out
}
