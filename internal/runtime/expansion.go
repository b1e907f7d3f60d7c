package runtime

import (
	"sort"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// ExpansionRecord is the expansion state of one address. Manual marks a
// user-initiated expansion that automatic policies must not undo.
type ExpansionRecord struct {
	Expanded bool
	Manual   bool
}

type expansionEntry struct {
	addr domain.Address
	ExpansionRecord
}

// Expansion records which nodes are expanded.
type Expansion struct {
	records map[string]*expansionEntry
}

// NewExpansion creates an empty expansion state; every address starts
// collapsed.
func NewExpansion() *Expansion {
	return &Expansion{records: make(map[string]*expansionEntry)}
}

// SetExpanded records value for addr. A manual expand marks the record
// manual; a manual collapse clears the mark. Automatic changes keep it.
func (e *Expansion) SetExpanded(addr domain.Address, value, manual bool) {
	key := addr.Key()
	rec, ok := e.records[key]
	if !ok {
		rec = &expansionEntry{addr: addr}
		e.records[key] = rec
	}
	rec.Expanded = value
	if manual {
		rec.Manual = value
	}
}

// IsExpanded reports the recorded state; unknown addresses are collapsed.
func (e *Expansion) IsExpanded(addr domain.Address) bool {
	rec, ok := e.records[addr.Key()]
	return ok && rec.Expanded
}

// Record returns the record for addr.
func (e *Expansion) Record(addr domain.Address) (ExpansionRecord, bool) {
	rec, ok := e.records[addr.Key()]
	if !ok {
		return ExpansionRecord{}, false
	}
	return rec.ExpansionRecord, true
}

// CollapseMatching collapses every expanded address for which match returns
// true. With respectManual, manually expanded addresses are left alone.
// It returns the number of addresses collapsed.
func (e *Expansion) CollapseMatching(match func(domain.Address) bool, respectManual bool) int {
	n := 0
	for _, rec := range e.records {
		if !rec.Expanded || (respectManual && rec.Manual) {
			continue
		}
		if match(rec.addr) {
			rec.Expanded = false
			n++
		}
	}
	return n
}

// ExpandedAddresses lists the expanded addresses in canonical order.
func (e *Expansion) ExpandedAddresses() []domain.Address {
	var out []domain.Address
	for _, rec := range e.records {
		if rec.Expanded {
			out = append(out, rec.addr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
