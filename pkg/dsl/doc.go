/*
Package dsl builds solver game trees in Go.

It produces the same JSON document a solver writes, so the result can be fed
to gametree.Parse, uploaded to a node service or written to disk. It is
mostly useful for tests and demos that need trees of a given shape without a
fixture file.

Example usage:

	b := dsl.New().Player(1).Board("AhKd7c").Pot(10)

	bet := b.Root().Action("BET 2").Player(0)
	bet.Action("FOLD")
	bet.Action("CALL").Deal("As", "2d").Card("As").Player(1).Action("CHECK")

	tree, err := b.Build()
*/
package dsl
