package runtime

import "github.com/EricFan2002/GTOJsonExplorer/pkg/domain"

// ActionLog is the append-only record of action steps the user took in a
// session. It feeds direct resolution only.
type ActionLog struct {
	steps []domain.Step
}

// Append records a step.
func (l *ActionLog) Append(s domain.Step) {
	l.steps = append(l.steps, s)
}

// Steps returns a copy of the log.
func (l *ActionLog) Steps() []domain.Step {
	return append([]domain.Step(nil), l.steps...)
}

// Len returns the number of steps.
func (l *ActionLog) Len() int { return len(l.steps) }
