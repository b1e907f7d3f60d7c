// Package gametree reads solver output and answers node queries against it.
//
// A Tree holds the decoded JSON as a generic map, the same shape the solver
// writes: decision nodes carry "actions" and "childrens", chance nodes carry
// "dealcards". Node fields are decoded on demand and resolved nodes are
// cached by address.
package gametree
