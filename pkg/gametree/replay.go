package gametree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// Replay resolves addr by walking from the root and taking actions in
// order, instead of trusting the action labels written in addr. Labels and
// cards are compared in normalized form, so "bet 2.0" reaches "BET 2" and
// "AH" reaches "Ah". Action steps beyond len(actions) fall back to the
// label in addr.
//
// The returned info carries the requested address, not the solver's
// spelling of it, so the caller can index it where it asked.
func (t *Tree) Replay(addr domain.Address, actions []string) (NodeInfo, error) {
	r := resolved{raw: t.root}
	next := 0
	for i, seg := range addr {
		want := seg
		if seg.Kind == domain.SegmentAction && next < len(actions) {
			want.Value = actions[next]
			next++
		}
		res, ok := step(r, want, matchNormalized)
		if !ok && want.Value != seg.Value {
			res, ok = step(r, seg, matchNormalized)
		}
		if !ok {
			return NodeInfo{}, fmt.Errorf("%w: replay of %s stopped at segment %d", domain.ErrNotFound, addr, i)
		}
		r = res
	}
	r.addr = addr
	return describe(r)
}

func matchNormalized(keys []string, want string) (string, bool) {
	if k, ok := matchExact(keys, want); ok {
		return k, true
	}
	nw := normalizeLabel(want)
	for _, k := range keys {
		if normalizeLabel(k) == nw {
			return k, true
		}
	}
	return "", false
}

// normalizeLabel folds case and whitespace and canonicalizes numbers and
// card spellings.
func normalizeLabel(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if n, err := strconv.ParseFloat(f, 64); err == nil {
			fields[i] = strconv.FormatFloat(n, 'f', -1, 64)
			continue
		}
		if len(f) >= 2 && len(f) <= 4 && len(fields) == 1 {
			fields[i] = domain.NormalizeCard(f)
			continue
		}
		fields[i] = strings.ToUpper(f)
	}
	return strings.Join(fields, " ")
}
