package domain

// NavState is the state of the navigation controller.
type NavState int

const (
	StateIdle NavState = iota
	StateResolving
	StateRendering
	StateError
)

func (s NavState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateRendering:
		return "rendering"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// KindLoading tags the placeholder row shown under an expanded node whose
// children are still being fetched.
const KindLoading KindTag = "loading"

// RenderNode is one row of the rendered tree.
//
// Clicking the body of a row navigates to Address; clicking its toggle
// (when HasToggle) flips its expansion.
type RenderNode struct {
	Address     Address       `json:"-"`
	Path        string        `json:"path"`
	Label       string        `json:"label"`
	Kind        KindTag       `json:"kind"`
	HasToggle   bool          `json:"has_toggle"`
	Expanded    bool          `json:"expanded"`
	Loading     bool          `json:"loading,omitempty"`
	Placeholder bool          `json:"placeholder,omitempty"`
	Selected    bool          `json:"selected,omitempty"`
	Error       string        `json:"error,omitempty"`
	Children    []*RenderNode `json:"children,omitempty"`
}

// RenderTree is an immutable snapshot of the visible tree.
type RenderTree struct {
	Root      *RenderNode `json:"root"`
	Selection string      `json:"selection,omitempty"`
	Selected  bool        `json:"selected"`
	State     NavState    `json:"-"`
	// Pending lists expanded nodes whose children must be fetched.
	Pending []Address `json:"-"`
}
