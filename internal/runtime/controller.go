package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/internal/logging"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"golang.org/x/sync/singleflight"
)

// Policy tunes the automatic behaviour of the controller.
type Policy struct {
	// DepthThreshold triggers the one-shot bulk expansion when a navigation
	// resolves an address deeper than this many segments. Depth counts typed
	// steps (an action, a deal gate, a card), not "/"-separated tokens: the
	// default of 4 fires on the fifth step, so /childrens/BET 2/childrens/CALL
	// has depth 2 and does not trigger it.
	DepthThreshold int
	// ChunkSize bounds how many nodes one bulk expansion step touches.
	ChunkSize int
	// PreExpandLevels is how many levels below the root are expanded when a
	// session is loaded.
	PreExpandLevels int
	// CollapseCards collapses deal gates off the selected path after each
	// navigation, leaving manually expanded gates alone.
	CollapseCards bool
	// Yield runs between bulk expansion chunks.
	Yield func()
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() Policy {
	return Policy{
		DepthThreshold:  4,
		ChunkSize:       32,
		PreExpandLevels: 2,
		CollapseCards:   true,
		Yield:           goruntime.Gosched,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPolicy replaces the default policy. A non-positive DepthThreshold or
// ChunkSize and a nil Yield keep their defaults.
func WithPolicy(p Policy) Option {
	return func(c *Controller) {
		def := DefaultPolicy()
		if p.DepthThreshold <= 0 {
			p.DepthThreshold = def.DepthThreshold
		}
		if p.ChunkSize <= 0 {
			p.ChunkSize = def.ChunkSize
		}
		if p.PreExpandLevels < 0 {
			p.PreExpandLevels = 0
		}
		if p.Yield == nil {
			p.Yield = def.Yield
		}
		c.policy = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithRequestTimeout bounds each background fetch.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// Controller drives navigation over a lazily loaded game tree.
//
// All session state is guarded by one mutex. Remote calls run with the
// mutex released; when they complete, their result is committed only if it
// still answers the latest request of the same session.
type Controller struct {
	svc      ports.NodeService
	recovery *Recovery
	logger   *slog.Logger
	policy   Policy
	hooks    domain.LifecycleHooks
	timeout  time.Duration

	mu   sync.Mutex
	sess *Session

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}

	loads  singleflight.Group
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller over svc. No session is loaded.
func NewController(svc ports.NodeService, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		svc:      svc,
		recovery: NewRecovery(svc),
		logger:   logging.NewNop(),
		policy:   DefaultPolicy(),
		subs:     make(map[chan struct{}]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset replaces the session state with an empty one for sessionID. Work
// still in flight for the previous session is discarded on completion.
func (c *Controller) Reset(sessionID string) {
	c.mu.Lock()
	c.sess = NewSession(sessionID)
	c.mu.Unlock()
	c.notify()
}

// Load resets the controller and seeds it with the bootstrap snapshot of
// sessionID.
func (c *Controller) Load(ctx context.Context, sessionID string) error {
	c.Reset(sessionID)
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	snap, err := c.svc.Tree(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load tree for session %s: %w", sessionID, err)
	}

	c.mu.Lock()
	if c.sess != sess {
		c.mu.Unlock()
		return domain.ErrStaleDiscarded
	}
	for _, n := range snap.Nodes {
		sess.Registry.Upsert(n)
	}
	c.preExpand(sess, domain.Root(), c.policy.PreExpandLevels)
	sess.Expansion.SetExpanded(domain.Root(), true, false)
	tree := c.renderLocked(sess)
	c.mu.Unlock()

	c.logger.Info("session loaded", "session_id", sessionID, "nodes", len(snap.Nodes))
	c.emit(c.hooks.OnLoad, sessionID, domain.EventLoad, domain.Root(), false, nil)
	c.notify()
	c.schedule(sess, tree.Pending)
	return nil
}

func (c *Controller) preExpand(sess *Session, addr domain.Address, levels int) {
	if levels <= 0 || !sess.Registry.HasLoadedChildren(addr) {
		return
	}
	sess.Expansion.SetExpanded(addr, true, false)
	n, _ := sess.Registry.node(addr)
	for _, child := range n.Children {
		if _, gate := domain.KindOf(child).(domain.DealGateKind); gate && c.policy.CollapseCards {
			continue
		}
		c.preExpand(sess, child, levels-1)
	}
}

// Goto resolves addr, selects it and reveals it.
//
// When structural lookup fails, the node is recovered by action replay. If
// that fails too the controller enters the error state, the failure is shown
// next to the node and the selection is kept. A navigation superseded by a
// later one returns domain.ErrStaleDiscarded and changes nothing.
func (c *Controller) Goto(ctx context.Context, addr domain.Address) error {
	if err := addr.Validate(); err != nil {
		c.logger.Error("goto aborted", "path", addr.Display(), "err", err)
		return err
	}

	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		c.mu.Unlock()
		return domain.ErrNoSession
	}
	sess.target = addr
	sess.hasTarget = true
	sess.state = domain.StateResolving
	delete(sess.failures, addr.Key())
	c.mu.Unlock()

	c.notify()
	c.emit(c.hooks.OnResolve, sess.ID, domain.EventResolve, addr, false, nil)
	c.logger.Debug("resolving node", "session_id", sess.ID, "path", addr.Display())

	node, recovered, err := c.resolve(ctx, sess, addr)

	c.mu.Lock()
	if !c.isLatest(sess, addr) {
		c.mu.Unlock()
		c.logger.Debug("discarding stale result", "session_id", sess.ID, "path", addr.Display())
		c.emit(c.hooks.OnDiscard, sess.ID, domain.EventDiscard, addr, recovered, nil)
		return domain.ErrStaleDiscarded
	}

	if err != nil {
		if ctx.Err() != nil {
			sess.state = domain.StateIdle
			c.mu.Unlock()
			c.notify()
			return ctx.Err()
		}
		err = fmt.Errorf("%w: %s: %w", domain.ErrRecoveryFailed, addr.Display(), err)
		sess.state = domain.StateError
		sess.failures[addr.Key()] = failure{err: err, fromGoto: true}
		c.mu.Unlock()

		c.logger.Warn("node could not be resolved", "session_id", sess.ID, "path", addr.Display(), "err", err)
		c.emit(c.hooks.OnFailure, sess.ID, domain.EventFailure, addr, false, err)
		c.notify()
		return err
	}

	c.commit(sess, node)
	if last, ok := addr.Last(); ok && last.Kind == domain.SegmentAction {
		sess.Log.Append(domain.Step{Address: addr, Action: last.Value})
	}
	sess.selection = addr
	sess.hasSelection = true
	for _, a := range addr.Ancestors() {
		sess.Expansion.SetExpanded(a, true, false)
	}
	if c.policy.CollapseCards {
		sess.Expansion.CollapseMatching(func(a domain.Address) bool {
			_, gate := domain.KindOf(a).(domain.DealGateKind)
			return gate && !a.Equal(addr) && !a.IsAncestorOf(addr)
		}, true)
	}

	sess.state = domain.StateRendering
	tree := c.renderLocked(sess)
	sess.state = domain.StateIdle

	bulk := !sess.expandedOnce && addr.Depth() > c.policy.DepthThreshold
	if bulk {
		sess.expandedOnce = true
	}
	c.mu.Unlock()

	c.emit(c.hooks.OnCommit, sess.ID, domain.EventCommit, addr, recovered, nil)
	c.notify()
	c.schedule(sess, tree.Pending)
	if bulk {
		c.logger.Debug("expanding visible tree", "session_id", sess.ID, "depth", addr.Depth())
		c.expandVisible(sess)
	}
	return nil
}

// resolve fetches addr, falling back to recovery. The bool reports whether
// recovery produced the node.
func (c *Controller) resolve(ctx context.Context, sess *Session, addr domain.Address) (domain.TreeNode, bool, error) {
	node, err := c.svc.Node(ctx, sess.ID, addr)
	if err == nil {
		node.Address = addr
		return node, false, nil
	}
	if ctx.Err() != nil {
		return domain.TreeNode{}, false, err
	}
	c.logger.Debug("primary lookup failed, replaying actions", "session_id", sess.ID, "path", addr.Display(), "err", err)

	c.mu.Lock()
	steps := sess.Log.Steps()
	c.mu.Unlock()

	node, rerr := c.recovery.Recover(ctx, sess.ID, addr, steps)
	if rerr != nil {
		return domain.TreeNode{}, false, errors.Join(err, rerr)
	}
	c.emit(c.hooks.OnRecover, sess.ID, domain.EventRecover, addr, true, nil)
	return node, true, nil
}

// commit stores a resolved node. Callers hold c.mu.
func (c *Controller) commit(sess *Session, node domain.TreeNode) {
	if node.Actions != nil {
		node.Actions = sess.Actions.Reconcile(node.Address, node.Actions)
	}
	sess.Registry.Upsert(node)
}

func (c *Controller) isLatest(sess *Session, addr domain.Address) bool {
	return c.sess == sess && sess.hasTarget && sess.target.Equal(addr)
}

// Toggle flips the expansion of addr as a manual action. Expanding a node
// whose children are unknown schedules their fetch; nothing else touches
// the network.
func (c *Controller) Toggle(ctx context.Context, addr domain.Address) error {
	if err := addr.Validate(); err != nil {
		c.logger.Error("toggle aborted", "path", addr.Display(), "err", err)
		return err
	}

	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		c.mu.Unlock()
		return domain.ErrNoSession
	}
	sess.Expansion.SetExpanded(addr, !sess.Expansion.IsExpanded(addr), true)
	tree := c.renderLocked(sess)
	c.mu.Unlock()

	c.notify()
	c.schedule(sess, tree.Pending)
	return nil
}

// Select moves the selection to a node already in the registry and reveals
// it. It supersedes any navigation in flight.
func (c *Controller) Select(ctx context.Context, addr domain.Address) error {
	if err := addr.Validate(); err != nil {
		c.logger.Error("select aborted", "path", addr.Display(), "err", err)
		return err
	}

	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		c.mu.Unlock()
		return domain.ErrNoSession
	}
	if _, ok := sess.Registry.node(addr); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNotFound, addr.Display())
	}
	sess.target = addr
	sess.hasTarget = true
	sess.selection = addr
	sess.hasSelection = true
	sess.state = domain.StateIdle
	for _, a := range addr.Ancestors() {
		sess.Expansion.SetExpanded(a, true, false)
	}
	tree := c.renderLocked(sess)
	c.mu.Unlock()

	c.notify()
	c.schedule(sess, tree.Pending)
	return nil
}

// Retry repeats what failed at addr: the navigation for a failed Goto, the
// child fetch for a failed expansion.
func (c *Controller) Retry(ctx context.Context, addr domain.Address) error {
	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		c.mu.Unlock()
		return domain.ErrNoSession
	}
	f, ok := sess.failures[addr.Key()]
	delete(sess.failures, addr.Key())
	c.mu.Unlock()

	if !ok || f.fromGoto {
		return c.Goto(ctx, addr)
	}

	c.mu.Lock()
	tree := c.renderLocked(sess)
	c.mu.Unlock()
	c.notify()
	c.schedule(sess, tree.Pending)
	return nil
}

// Dispatch executes cmd.
func (c *Controller) Dispatch(ctx context.Context, cmd domain.Command) error {
	switch cmd := cmd.(type) {
	case domain.Goto:
		return c.Goto(ctx, cmd.Address)
	case domain.Toggle:
		return c.Toggle(ctx, cmd.Address)
	case domain.Select:
		return c.Select(ctx, cmd.Address)
	case domain.Retry:
		return c.Retry(ctx, cmd.Address)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

// Snapshot renders the current tree.
func (c *Controller) Snapshot() domain.RenderTree {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return domain.RenderTree{}
	}
	return c.renderLocked(c.sess)
}

func (c *Controller) renderLocked(sess *Session) domain.RenderTree {
	return Render(sess.renderInput())
}

// State returns the navigation state.
func (c *Controller) State() domain.NavState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return domain.StateIdle
	}
	return c.sess.state
}

// SessionID returns the loaded dataset session, if any.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.ID
}

// Selection returns the selected address.
func (c *Controller) Selection() (domain.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil, false
	}
	return c.sess.Selection()
}

// Node returns the registry entry for addr.
func (c *Controller) Node(addr domain.Address) (domain.TreeNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return domain.TreeNode{}, false
	}
	return c.sess.Registry.Get(addr)
}

// IsExpanded reports whether addr is shown expanded: the expansion is
// recorded and its children are loaded.
func (c *Controller) IsExpanded(addr domain.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return false
	}
	return c.sess.Expansion.IsExpanded(addr) && c.sess.Registry.HasLoadedChildren(addr)
}

// Expansion returns the recorded expansion of addr.
func (c *Controller) Expansion(addr domain.Address) (ExpansionRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ExpansionRecord{}, false
	}
	return c.sess.Expansion.Record(addr)
}

// Actions returns the cached action list of addr.
func (c *Controller) Actions(addr domain.Address) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil, false
	}
	return c.sess.Actions.Get(addr)
}

// Steps returns the action sequence log.
func (c *Controller) Steps() []domain.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.Log.Steps()
}

// Failure returns the inline failure recorded at addr.
func (c *Controller) Failure(addr domain.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.failures[addr.Key()].err
}

// Subscribe returns a channel that receives a value whenever the rendered
// tree may have changed. Notifications coalesce; a slow reader sees one
// pending signal. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.subMu.Lock()
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, ch)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller) notify() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Wait blocks until background fetches and bulk expansion are done.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels background work and waits for it.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) emit(hook func(context.Context, *domain.NavigationEvent), sessionID string, typ domain.EventType, addr domain.Address, recovered bool, err error) {
	if hook == nil {
		return
	}
	hook(c.ctx, &domain.NavigationEvent{
		Timestamp: time.Now(),
		Type:      typ,
		SessionID: sessionID,
		Address:   addr.String(),
		Recovered: recovered,
		Err:       err,
	})
}
