/*
Package explorer browses solved poker game trees lazily, addressing every
node by its path from the root.

A solver output is a single large JSON document. The Explorer never holds
it: it asks a NodeService for one node at a time, keeps what it learned in
a registry, and renders only what is expanded. Paths look like

	/childrens/BET 2/childrens/CALL/dealcards/Ah

where "childrens/<ACTION>" follows an action and "dealcards/<CARD>" follows
a dealt card.

# Usage

	svc := gtoxhttp.NewClient("http://localhost:5000")
	ex := explorer.New(svc, explorer.WithLogger(logger))
	defer ex.Close()

	if err := ex.Load(ctx, sessionID); err != nil {
		log.Fatal(err)
	}
	if err := ex.GotoPath(ctx, "/childrens/BET 2/childrens/CALL"); err != nil {
		log.Fatal(err)
	}
	for _, line := range ex.Lines() {
		fmt.Println(line.Prefix + line.Node.Label)
	}

When the exact lookup of a path fails, the Explorer replays the recorded
action sequence from the root instead. A navigation superseded by a newer
one returns domain.ErrStaleDiscarded and leaves the view untouched.
*/
package explorer
