package domain

// Command is a user intent addressed to the navigation controller. The set
// is closed: Goto, Toggle, Select and Retry.
type Command interface {
	Target() Address
	command()
}

// Goto resolves the node and selects it.
type Goto struct{ Address Address }

// Toggle flips the expansion of a node as a manual action.
type Toggle struct{ Address Address }

// Select moves the selection to an already known node.
type Select struct{ Address Address }

// Retry repeats a navigation that ended in a recovery failure.
type Retry struct{ Address Address }

func (c Goto) Target() Address   { return c.Address }
func (c Toggle) Target() Address { return c.Address }
func (c Select) Target() Address { return c.Address }
func (c Retry) Target() Address  { return c.Address }

func (Goto) command()   {}
func (Toggle) command() {}
func (Select) command() {}
func (Retry) command()  {}
