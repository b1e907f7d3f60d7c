/*
Package domain contains the core types of the game tree explorer.

It defines how nodes of a solved poker game tree are addressed, what the
client knows about a node, and the commands and events that flow through
navigation. The package is pure: no I/O, no persistence.

# Key Entities

  - Address: a typed segment path ("/childrens/BET 2/dealcards/Ah").
  - TreeNode: one decision point, possibly with children not yet fetched.
  - Kind: the closed set of node variants (root, action, deal gate, card).
  - Command: Goto, Toggle, Select or Retry.
  - RenderTree: the visible tree handed to presentation layers.
*/
package domain
