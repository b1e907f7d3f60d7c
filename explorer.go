package explorer

import (
	"context"
	"log/slog"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/internal/runtime"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
)

// Policy tunes automatic expansion. See DefaultPolicy.
type Policy = runtime.Policy

// Move is a navigation button offered at a node.
type Move = runtime.Move

// MoveKind classifies a Move.
type MoveKind = runtime.MoveKind

// Crumb is one element of a breadcrumb trail.
type Crumb = runtime.Crumb

// Line is one row of a flattened render tree.
type Line = runtime.Line

// Move kinds.
const (
	MoveUp     = runtime.MoveUp
	MoveAction = runtime.MoveAction
	MoveCards  = runtime.MoveCards
	MoveCard   = runtime.MoveCard
)

// DefaultPolicy returns the stock expansion policy.
func DefaultPolicy() Policy { return runtime.DefaultPolicy() }

// Explorer is the high-level entry point of the library. It browses one
// dataset session at a time over a NodeService and is safe for concurrent
// use.
type Explorer struct {
	ctrl   *runtime.Controller
	logger *slog.Logger
}

// Option configures an Explorer.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	policy  *Policy
	hooks   domain.LifecycleHooks
	timeout time.Duration
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPolicy replaces the default expansion policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = &p
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithRequestTimeout bounds each background child fetch.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New creates an Explorer over svc. Call Load before navigating.
func New(svc ports.NodeService, opts ...Option) *Explorer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var rtOpts []runtime.Option
	if o.logger != nil {
		rtOpts = append(rtOpts, runtime.WithLogger(o.logger))
	}
	if o.policy != nil {
		rtOpts = append(rtOpts, runtime.WithPolicy(*o.policy))
	}
	if o.timeout > 0 {
		rtOpts = append(rtOpts, runtime.WithRequestTimeout(o.timeout))
	}
	rtOpts = append(rtOpts, runtime.WithLifecycleHooks(o.hooks))

	return &Explorer{
		ctrl:   runtime.NewController(svc, rtOpts...),
		logger: o.logger,
	}
}

// Load discards the current session and bootstraps sessionID from the
// service's tree snapshot.
func (e *Explorer) Load(ctx context.Context, sessionID string) error {
	return e.ctrl.Load(ctx, sessionID)
}

// Goto resolves addr, selects it and reveals it. It returns
// domain.ErrStaleDiscarded when a later navigation superseded it.
func (e *Explorer) Goto(ctx context.Context, addr domain.Address) error {
	return e.ctrl.Goto(ctx, addr)
}

// GotoPath parses raw and navigates to it.
func (e *Explorer) GotoPath(ctx context.Context, raw string) error {
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		return err
	}
	return e.ctrl.Goto(ctx, addr)
}

// Toggle flips the expansion of addr.
func (e *Explorer) Toggle(ctx context.Context, addr domain.Address) error {
	return e.ctrl.Toggle(ctx, addr)
}

// Select moves the selection to a node that is already known.
func (e *Explorer) Select(ctx context.Context, addr domain.Address) error {
	return e.ctrl.Select(ctx, addr)
}

// Retry repeats the failed operation recorded at addr.
func (e *Explorer) Retry(ctx context.Context, addr domain.Address) error {
	return e.ctrl.Retry(ctx, addr)
}

// Dispatch executes a navigation command.
func (e *Explorer) Dispatch(ctx context.Context, cmd domain.Command) error {
	return e.ctrl.Dispatch(ctx, cmd)
}

// Snapshot renders the visible tree.
func (e *Explorer) Snapshot() domain.RenderTree { return e.ctrl.Snapshot() }

// Lines renders the visible tree as indented rows.
func (e *Explorer) Lines() []Line { return runtime.Flatten(e.ctrl.Snapshot()) }

// State returns the navigation state.
func (e *Explorer) State() domain.NavState { return e.ctrl.State() }

// SessionID returns the loaded session, or "".
func (e *Explorer) SessionID() string { return e.ctrl.SessionID() }

// Selection returns the selected address.
func (e *Explorer) Selection() (domain.Address, bool) { return e.ctrl.Selection() }

// Node returns what is known about addr.
func (e *Explorer) Node(addr domain.Address) (domain.TreeNode, bool) { return e.ctrl.Node(addr) }

// IsExpanded reports whether addr is shown expanded.
func (e *Explorer) IsExpanded(addr domain.Address) bool { return e.ctrl.IsExpanded(addr) }

// Failure returns the failure shown next to addr, if any.
func (e *Explorer) Failure(addr domain.Address) error { return e.ctrl.Failure(addr) }

// Steps returns the recorded action sequence.
func (e *Explorer) Steps() []domain.Step { return e.ctrl.Steps() }

// Moves lists the navigation buttons of addr.
func (e *Explorer) Moves(addr domain.Address) []Move { return e.ctrl.Moves(addr) }

// Breadcrumb returns the trail from the root to addr.
func (e *Explorer) Breadcrumb(addr domain.Address) []Crumb { return runtime.Breadcrumb(addr) }

// Subscribe returns a coalescing change notification channel and its
// cancel func.
func (e *Explorer) Subscribe() (<-chan struct{}, func()) { return e.ctrl.Subscribe() }

// Wait blocks until background loads settle.
func (e *Explorer) Wait() { e.ctrl.Wait() }

// Close cancels background work.
func (e *Explorer) Close() { e.ctrl.Close() }
