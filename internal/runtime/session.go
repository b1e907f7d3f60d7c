package runtime

import "github.com/EricFan2002/GTOJsonExplorer/pkg/domain"

// failure is a resolution failure shown inline next to a node. fromGoto
// tells Retry whether to navigate again or only refetch the children.
type failure struct {
	err      error
	fromGoto bool
}

// Session holds every piece of state tied to one loaded dataset. It is
// created whole and replaced whole; nothing in it is reset piecemeal.
type Session struct {
	ID        string
	Registry  *Registry
	Expansion *Expansion
	Actions   *ActionCache
	Log       *ActionLog

	selection    domain.Address
	hasSelection bool

	// target is the latest requested navigation; only it may commit.
	target    domain.Address
	hasTarget bool

	state        domain.NavState
	expandedOnce bool
	failures     map[string]failure
	loading      map[string]bool
}

// NewSession creates the empty state for dataset session id.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Registry:  NewRegistry(),
		Expansion: NewExpansion(),
		Actions:   NewActionCache(),
		Log:       &ActionLog{},
		failures:  make(map[string]failure),
		loading:   make(map[string]bool),
	}
}

// Selection returns the selected address.
func (s *Session) Selection() (domain.Address, bool) {
	return s.selection, s.hasSelection
}

func (s *Session) renderInput() RenderInput {
	errs := make(map[string]error, len(s.failures))
	for k, f := range s.failures {
		errs[k] = f.err
	}
	return RenderInput{
		Registry:     s.Registry,
		Expansion:    s.Expansion,
		Selection:    s.selection,
		HasSelection: s.hasSelection,
		Failures:     errs,
		State:        s.state,
	}
}
