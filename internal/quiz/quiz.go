// Package quiz implements the qualification funnel state machine: a fixed
// sequence of questions with per-option outcomes that can end the quiz early
// (disqualification) or insert a single conditional follow-up question before
// completion. The engine is pure in-memory state, one session, no I/O.
package quiz

import (
	"errors"
	"fmt"
)

// Outcome is the effect attached to an answer option.
type Outcome int

const (
	// OutcomeContinue advances the normal sequence (or completes it).
	OutcomeContinue Outcome = iota
	// OutcomeFollowUp diverts into the single follow-up question.
	OutcomeFollowUp
	// OutcomeDisqualify ends the quiz immediately.
	OutcomeDisqualify
)

type Option struct {
	Text    string
	Outcome Outcome
}

type Question struct {
	ID      int
	Text    string
	Options []Option
}

// State of the engine. Question and FollowUp accept answers; Completed and
// Disqualified are terminal.
type State int

const (
	StateQuestion State = iota
	StateFollowUp
	StateCompleted
	StateDisqualified
)

var (
	ErrTerminal      = errors.New("quiz: session already ended")
	ErrInvalidOption = errors.New("quiz: option index out of range")
)

// Engine drives one visitor through the funnel. Not safe for concurrent use;
// a session lives on a single interactive goroutine.
type Engine struct {
	questions []Question
	followUp  Question

	step       int
	inFollowUp bool
	state      State
	answers    map[int]string

	onComplete   func(answers map[int]string)
	onDisqualify func()
}

func NewEngine(questions []Question, followUp Question, onComplete func(map[int]string), onDisqualify func()) *Engine {
	return &Engine{
		questions:    questions,
		followUp:     followUp,
		answers:      make(map[int]string),
		onComplete:   onComplete,
		onDisqualify: onDisqualify,
	}
}

// Current returns the question awaiting an answer.
func (e *Engine) Current() Question {
	if e.inFollowUp {
		return e.followUp
	}
	return e.questions[e.step]
}

func (e *Engine) State() State { return e.state }

// Answers returns a copy of the accumulated answer map, keyed by question id.
func (e *Engine) Answers() map[int]string {
	out := make(map[int]string, len(e.answers))
	for id, text := range e.answers {
		out[id] = text
	}
	return out
}

// Select answers the current question with the option at index and applies
// the transition rule. Disqualification wins over everything; follow-up wins
// over sequence advancement; the last question of the sequence (or any
// non-disqualifying follow-up answer) completes the quiz.
func (e *Engine) Select(index int) error {
	if e.terminal() {
		return ErrTerminal
	}

	q := e.Current()
	if index < 0 || index >= len(q.Options) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidOption, index, len(q.Options))
	}
	opt := q.Options[index]

	e.answers[q.ID] = opt.Text

	switch opt.Outcome {
	case OutcomeDisqualify:
		e.state = StateDisqualified
		if e.onDisqualify != nil {
			e.onDisqualify()
		}
	case OutcomeFollowUp:
		e.inFollowUp = true
		e.state = StateFollowUp
	default:
		if e.inFollowUp || e.step == len(e.questions)-1 {
			e.state = StateCompleted
			if e.onComplete != nil {
				e.onComplete(e.Answers())
			}
			return nil
		}
		e.step++
	}
	return nil
}

// Back navigates to the previous question. From the follow-up it returns to
// the question that engaged it; at the first question it is disabled.
// Recorded answers are kept and overwritten on re-selection.
func (e *Engine) Back() error {
	if e.terminal() {
		return ErrTerminal
	}
	if e.inFollowUp {
		e.inFollowUp = false
		e.state = StateQuestion
		return nil
	}
	if e.step > 0 {
		e.step--
	}
	return nil
}

// CanGoBack reports whether Back has anywhere to go.
func (e *Engine) CanGoBack() bool {
	return !e.terminal() && (e.inFollowUp || e.step > 0)
}

// Step is the 1-based position shown to the visitor; the follow-up displays
// as the extra final step.
func (e *Engine) Step() int {
	if e.inFollowUp {
		return len(e.questions) + 1
	}
	return e.step + 1
}

// TotalSteps is 6 on the normal path and 7 once the follow-up is engaged.
// Computed from the engaged state, never a constant.
func (e *Engine) TotalSteps() int {
	if e.inFollowUp {
		return len(e.questions) + 1
	}
	return len(e.questions)
}

// Progress is Step/TotalSteps in [0,1].
func (e *Engine) Progress() float64 {
	return float64(e.Step()) / float64(e.TotalSteps())
}

func (e *Engine) terminal() bool {
	return e.state == StateCompleted || e.state == StateDisqualified
}
