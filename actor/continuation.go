package actor

import "github.com/xudd/xudd/envelope"

// Continuation is a suspended handler awaiting the reply to a specific
// message it has sent. Go has no native stackful coroutines, so a handler
// that suspends at more than one await point is expected to compile itself
// into an explicit state machine implementing this interface, per the
// tagged-state-record approach: each Resume call advances one state.
type Continuation interface {
	// Resume advances the continuation with the just-delivered reply (nil
	// on the very first drive, immediately after the handler returned a
	// Continuation instead of completing outright). It returns the ID of
	// the next message being awaited, or done=true if the continuation
	// has finished and should be discarded.
	Resume(reply *envelope.Message) (awaiting string, done bool, err error)
}

// FuncContinuation adapts a single-await closure into a Continuation. step
// is called exactly twice: once on the first drive, with a nil reply (it
// should return the ID it's about to wait on), and once more when that
// reply arrives (it should return done=true). It is meant for handlers
// with exactly one suspend point.
type FuncContinuation struct {
	step func(reply *envelope.Message) (awaiting string, done bool, err error)
}

// NewFuncContinuation wraps step in a Continuation. step must return
// awaiting!="" the first time it is called (to register what it's waiting
// on) and done=true the second time.
func NewFuncContinuation(
	step func(reply *envelope.Message) (awaiting string, done bool, err error),
) *FuncContinuation {

	return &FuncContinuation{step: step}
}

// Resume implements Continuation.
func (f *FuncContinuation) Resume(
	reply *envelope.Message) (string, bool, error) {

	return f.step(reply)
}

// Step is one state of a StepContinuation: given the reply that resumed
// this state (nil for the first), it either sends the next await and
// returns its message ID, or returns "" to move straight on to the next
// step (completing the continuation when it is the last step).
type Step func(reply *envelope.Message) (awaiting string, err error)

// StepContinuation drives a fixed slice of Steps in order, one per await
// point, as an explicit N-state machine keyed by step index. This is the
// helper for handlers with more than one suspend point.
type StepContinuation struct {
	steps []Step
	idx   int
}

// NewStepContinuation builds a StepContinuation over steps. steps must have
// at least one entry.
func NewStepContinuation(steps ...Step) *StepContinuation {
	return &StepContinuation{steps: steps}
}

// Resume implements Continuation, advancing to the next step in order. A
// step that returns an empty awaiting ID without error is treated as a
// synchronous hop to the next step, driven immediately with a nil reply.
func (s *StepContinuation) Resume(
	reply *envelope.Message) (string, bool, error) {

	for s.idx < len(s.steps) {
		step := s.steps[s.idx]
		s.idx++

		awaiting, err := step(reply)
		if err != nil {
			return "", false, err
		}
		if awaiting != "" {
			return awaiting, false, nil
		}

		reply = nil
	}

	return "", true, nil
}
