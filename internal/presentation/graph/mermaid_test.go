package graph_test

import (
	"strings"
	"testing"

	"github.com/EricFan2002/GTOJsonExplorer/internal/presentation/graph"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

func sampleTree(selection string) domain.RenderTree {
	gate := &domain.RenderNode{
		Path:  "/childrens/BET 2/childrens/CALL/dealcards",
		Label: "Cards",
		Kind:  domain.TagCards,
		Children: []*domain.RenderNode{
			{Path: "/childrens/BET 2/childrens/CALL/dealcards/As", Label: "A♠", Kind: domain.TagCard},
		},
	}
	call := &domain.RenderNode{Path: "/childrens/BET 2/childrens/CALL", Label: "CALL", Kind: domain.TagAction, Children: []*domain.RenderNode{gate}}
	bet := &domain.RenderNode{Path: "/childrens/BET 2", Label: "BET 2", Kind: domain.TagAction, Children: []*domain.RenderNode{call}}
	check := &domain.RenderNode{
		Path:    "/childrens/CHECK",
		Label:   "CHECK",
		Kind:    domain.TagAction,
		Loading: true,
		Children: []*domain.RenderNode{
			{Path: "/childrens/CHECK", Label: "Loading…", Kind: domain.KindLoading, Placeholder: true},
		},
	}
	tree := domain.RenderTree{
		Root: &domain.RenderNode{Path: "", Label: "Root", Kind: domain.TagRoot, Children: []*domain.RenderNode{check, bet}},
	}
	if selection != "" {
		tree.Selection = selection
		tree.Selected = true
	}
	return tree
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		tree     domain.RenderTree
		contains []string
		excludes []string
	}{
		{
			name: "Node Shapes",
			tree: sampleTree(""),
			contains: []string{
				`root(("Root"))`,
				`n_childrens_BET_2["BET 2"]`,
				`n_childrens_BET_2_childrens_CALL_dealcards{{"Cards"}}`,
				`n_childrens_BET_2_childrens_CALL_dealcards_As[/"A♠"/]`,
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Edges",
			tree: sampleTree(""),
			contains: []string{
				"root --> n_childrens_BET_2\n",
				"n_childrens_BET_2_childrens_CALL -.-> n_childrens_BET_2_childrens_CALL_dealcards\n",
				"n_childrens_CHECK -.- n_childrens_CHECK_loading\n",
			},
		},
		{
			name: "Selection Overlay",
			tree: sampleTree("/childrens/BET 2/childrens/CALL/dealcards/As"),
			contains: []string{
				"class root visited;",
				"class n_childrens_BET_2 visited;",
				"class n_childrens_BET_2_childrens_CALL_dealcards visited;",
				"class n_childrens_BET_2_childrens_CALL_dealcards_As current;",
			},
		},
		{
			name:     "Empty Tree",
			tree:     domain.RenderTree{},
			contains: []string{"graph TD\n"},
			excludes: []string{"root"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.tree)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
		})
	}
}
