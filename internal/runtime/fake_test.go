package runtime_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
)

type directCall struct {
	path    string
	actions []string
}

// fakeService serves a fixed tree. Addresses in hidden fail the structural
// lookup but still resolve by replay unless they are also in unreachable.
// Lookups of addresses in blocks wait until the channel is closed.
type fakeService struct {
	mu          sync.Mutex
	nodes       map[string]domain.TreeNode
	order       []string
	hidden      map[string]bool
	unreachable map[string]bool
	blocks      map[string]chan struct{}
	started     chan string
	nodeCalls   []string
	directCalls []directCall
	fullTree    bool
}

func newFakeService() *fakeService {
	f := &fakeService{
		nodes:       make(map[string]domain.TreeNode),
		hidden:      make(map[string]bool),
		unreachable: make(map[string]bool),
		blocks:      make(map[string]chan struct{}),
		started:     make(chan string, 256),
	}
	f.add("", []string{"CHECK", "BET 2"}, "/childrens/CHECK", "/childrens/BET 2")
	f.add("/childrens/CHECK", []string{"CHECK"})
	f.add("/childrens/BET 2", []string{"FOLD", "CALL"}, "/childrens/BET 2/childrens/CALL", "/childrens/BET 2/dealcards")
	f.add("/childrens/BET 2/childrens/CALL", []string{})
	f.add("/childrens/BET 2/dealcards", nil, "/childrens/BET 2/dealcards/Ah", "/childrens/BET 2/dealcards/Kd")
	f.add("/childrens/BET 2/dealcards/Ah", []string{"CHECK"}, "/childrens/BET 2/dealcards/Ah/childrens/CHECK")
	f.add("/childrens/BET 2/dealcards/Kd", []string{"CHECK"}, "/childrens/BET 2/dealcards/Kd/childrens/CHECK")
	f.add("/childrens/BET 2/dealcards/Ah/childrens/CHECK", []string{})
	f.add("/childrens/BET 2/dealcards/Kd/childrens/CHECK", []string{})
	return f
}

func (f *fakeService) add(path string, actions []string, children ...string) {
	addr := domain.MustParseAddress(path)
	n := domain.Placeholder(addr)
	n.ChildrenLoaded = true
	n.Children = []domain.Address{}
	for _, c := range children {
		n.Children = append(n.Children, domain.MustParseAddress(c))
	}
	n.Actions = actions
	if n.Actions == nil {
		n.Actions = []string{}
	}
	f.nodes[addr.Key()] = n
	f.order = append(f.order, addr.Key())
}

func (f *fakeService) block(path string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.blocks[domain.MustParseAddress(path).Key()] = ch
	return ch
}

func (f *fakeService) setHidden(path string, hidden bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[domain.MustParseAddress(path).Key()] = hidden
}

func (f *fakeService) setUnreachable(path string, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreachable[domain.MustParseAddress(path).Key()] = v
}

func (f *fakeService) directs() []directCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]directCall(nil), f.directCalls...)
}

func (f *fakeService) Node(ctx context.Context, sessionID string, addr domain.Address) (domain.TreeNode, error) {
	key := addr.Key()
	f.mu.Lock()
	f.nodeCalls = append(f.nodeCalls, key)
	ch := f.blocks[key]
	hidden := f.hidden[key]
	n, ok := f.nodes[key]
	f.mu.Unlock()

	select {
	case f.started <- key:
	default:
	}
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return domain.TreeNode{}, ctx.Err()
		}
	}
	if !ok || hidden {
		return domain.TreeNode{}, fmt.Errorf("%w: %s", domain.ErrNotFound, addr)
	}
	return n.Clone(), nil
}

func (f *fakeService) DirectNode(ctx context.Context, sessionID string, addr domain.Address, actions []string) (domain.TreeNode, error) {
	key := addr.Key()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directCalls = append(f.directCalls, directCall{path: key, actions: actions})
	n, ok := f.nodes[key]
	if !ok || f.unreachable[key] {
		return domain.TreeNode{}, fmt.Errorf("%w: %s", domain.ErrNotFound, addr)
	}
	return n.Clone(), nil
}

func (f *fakeService) Tree(ctx context.Context, sessionID string) (ports.TreeSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.fullTree {
		return ports.TreeSnapshot{Nodes: []domain.TreeNode{f.nodes[""].Clone()}}, nil
	}
	var snap ports.TreeSnapshot
	for _, k := range f.order {
		snap.Nodes = append(snap.Nodes, f.nodes[k].Clone())
	}
	return snap, nil
}
