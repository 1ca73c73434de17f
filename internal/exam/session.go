package exam

import (
	"context"
	"sync"
	"time"
)

const tickPeriod = time.Second

type SessionState int

const (
	StateInProgress SessionState = iota
	StateSubmitting
	StateSubmitted
)

func (s SessionState) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Submitter delivers the recorded answers for an attempt and returns the
// scored result. Implementations may persist server-side; the session does
// not depend on persistence succeeding to obtain a Result.
type Submitter interface {
	Submit(ctx context.Context, attemptID string, answers []Answer) (Result, error)
}

// SessionEvents are notification hooks for the surrounding UI layer. All
// callbacks are optional and are invoked without the session lock held, so a
// callback may call back into the session.
type SessionEvents struct {
	OnTick         func(remaining int)
	OnAutoSubmit   func()
	OnSubmitted    func(result Result)
	OnSubmitFailed func(err error)
}

// Session drives one timed attempt: it owns the clock and its tick
// scheduler, records answers, and guards the single transition out of
// InProgress. Exactly one trigger, manual submit or expiry, may enter
// Submitting; later triggers are dropped.
//
// A failed submission returns the session to InProgress with the answer set
// intact. If the deadline has passed by then, the expiry latch is re-armed
// and the next tick triggers another automatic submission.
type Session struct {
	mu        sync.Mutex
	ctx       context.Context
	attempt   Attempt
	questions []Question
	answers   *AnswerSet
	clock     *Clock
	scheduler Scheduler
	submitter Submitter
	events    SessionEvents

	state     SessionState
	current   int
	stopTicks func()
	result    Result
	lastErr   error
}

func NewSession(attempt Attempt, questions []Question, submitter Submitter, scheduler Scheduler, events SessionEvents) *Session {
	return newSessionWithClock(attempt, questions, submitter, scheduler, events, NewClock(attempt.EndTime))
}

func newSessionWithClock(attempt Attempt, questions []Question, submitter Submitter, scheduler Scheduler, events SessionEvents, clock *Clock) *Session {
	return &Session{
		attempt:   attempt,
		questions: questions,
		answers:   NewAnswerSet(),
		clock:     clock,
		scheduler: scheduler,
		submitter: submitter,
		events:    events,
	}
}

// Start performs the immediate initial tick and begins periodic ticking. If
// the deadline has already passed on load, automatic submission is triggered
// right away.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}

	remaining, expired := s.clock.Tick()
	if expired {
		s.enterSubmittingLocked()
		s.mu.Unlock()
		s.notifyTick(remaining)
		s.notifyAutoSubmit()
		s.performSubmit(ctx)
		return
	}

	s.startTicksLocked()
	s.mu.Unlock()
	s.notifyTick(remaining)
}

// Close releases the tick scheduler. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTicksLocked()
}

func (s *Session) handleTick() {
	s.mu.Lock()
	if s.state != StateInProgress || s.clock.Backgrounded() {
		s.mu.Unlock()
		return
	}

	remaining, expired := s.clock.Tick()
	if expired {
		s.enterSubmittingLocked()
		s.mu.Unlock()
		s.notifyTick(remaining)
		s.notifyAutoSubmit()
		s.performSubmit(s.baseContext())
		return
	}

	s.mu.Unlock()
	s.notifyTick(remaining)
}

// Background suspends ticking and disables all answer-mutating interactions.
// The deadline itself keeps running; backgrounding never pauses the clock.
func (s *Session) Background() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock.Backgrounded() {
		return
	}
	s.clock.Background()
	s.stopTicksLocked()
}

// Foreground re-enables interaction and immediately reconciles the remaining
// time from wall clock. If the deadline passed while backgrounded, expiry
// handling runs now instead of waiting for the next tick.
func (s *Session) Foreground() {
	s.mu.Lock()
	if !s.clock.Backgrounded() {
		s.mu.Unlock()
		return
	}

	remaining, expired := s.clock.Foreground()
	if s.state != StateInProgress {
		// A submission is already in flight or done; the foreground expiry
		// check lost the race and is dropped.
		s.mu.Unlock()
		return
	}
	if expired {
		s.enterSubmittingLocked()
		s.mu.Unlock()
		s.notifyTick(remaining)
		s.notifyAutoSubmit()
		s.performSubmit(s.baseContext())
		return
	}

	s.startTicksLocked()
	s.mu.Unlock()
	s.notifyTick(remaining)
}

// SelectOption records a selection for questionID, replacing any previous
// one. Correctness is not validated here; that happens at scoring time.
func (s *Session) SelectOption(questionID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactableLocked(); err != nil {
		return err
	}
	s.answers.Select(questionID, optionID)
	return nil
}

// ToggleReview flips the review flag for questionID, preserving the
// selection.
func (s *Session) ToggleReview(questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.interactableLocked(); err != nil {
		return err
	}
	s.answers.ToggleReview(questionID)
	return nil
}

// Next moves to the following question. Moving past the last question is a
// no-op, not an error.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(s.current + 1)
}

// Prev moves to the preceding question. Moving before the first question is
// a no-op.
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(s.current - 1)
}

// Goto jumps to the question at index. Out-of-range indexes are a no-op.
func (s *Session) Goto(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(index)
}

func (s *Session) moveLocked(index int) error {
	if err := s.interactableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.questions) {
		return nil
	}
	s.current = index
	return nil
}

// Submit performs a manual submission. Unless force is set, unanswered
// questions abort with ErrUnansweredQuestions so the caller can confirm
// submission-with-gaps first; the confirmed retry passes force=true.
func (s *Session) Submit(ctx context.Context, force bool) (Result, error) {
	s.mu.Lock()
	if s.clock.Backgrounded() {
		s.mu.Unlock()
		return Result{}, ErrAttemptBackgrounded
	}
	switch s.state {
	case StateSubmitted:
		result := s.result
		s.mu.Unlock()
		return result, ErrAttemptAlreadySubmitted
	case StateSubmitting:
		s.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	if !force && len(s.answers.Unanswered(s.questions)) > 0 {
		s.mu.Unlock()
		return Result{}, ErrUnansweredQuestions
	}

	s.enterSubmittingLocked()
	s.mu.Unlock()
	return s.performSubmit(ctx)
}

// enterSubmittingLocked is the single transition out of InProgress. Ticks
// are cancelled here so a stray late tick cannot re-trigger expiry once a
// submission has started.
func (s *Session) enterSubmittingLocked() {
	s.state = StateSubmitting
	s.stopTicksLocked()
}

func (s *Session) performSubmit(ctx context.Context) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	answers := s.answers.InOrder(s.questions)
	attemptID := s.attempt.AttemptID
	s.mu.Unlock()

	// The network call runs without the lock so ticks, lifecycle callbacks,
	// and status reads stay responsive while a submission is in flight.
	result, err := s.submitter.Submit(ctx, attemptID, answers)

	s.mu.Lock()
	if err != nil {
		// Failure returns control to InProgress; the answer set is kept so
		// retry never loses student work.
		s.state = StateInProgress
		s.lastErr = err
		if s.clock.compute() == 0 {
			s.clock.RearmExpiry()
		}
		s.startTicksLocked()
		s.mu.Unlock()
		s.notifySubmitFailed(err)
		return Result{}, err
	}

	s.state = StateSubmitted
	s.result = result
	s.lastErr = nil
	s.mu.Unlock()
	s.notifySubmitted(result)
	return result, nil
}

func (s *Session) interactableLocked() error {
	if s.clock.Backgrounded() {
		return ErrAttemptBackgrounded
	}
	switch s.state {
	case StateSubmitted:
		return ErrAttemptAlreadySubmitted
	case StateSubmitting:
		return ErrSubmissionInFlight
	}
	return nil
}

func (s *Session) startTicksLocked() {
	if s.scheduler == nil || s.stopTicks != nil || s.clock.Backgrounded() {
		return
	}
	if s.state != StateInProgress {
		return
	}
	s.stopTicks = s.scheduler.Start(tickPeriod, s.handleTick)
}

func (s *Session) stopTicksLocked() {
	if s.stopTicks != nil {
		s.stopTicks()
		s.stopTicks = nil
	}
}

func (s *Session) baseContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func (s *Session) notifyTick(remaining int) {
	if s.events.OnTick != nil {
		s.events.OnTick(remaining)
	}
}

func (s *Session) notifyAutoSubmit() {
	if s.events.OnAutoSubmit != nil {
		s.events.OnAutoSubmit()
	}
}

func (s *Session) notifySubmitted(result Result) {
	if s.events.OnSubmitted != nil {
		s.events.OnSubmitted(result)
	}
}

func (s *Session) notifySubmitFailed(err error) {
	if s.events.OnSubmitFailed != nil {
		s.events.OnSubmitFailed(err)
	}
}

// State returns the current submission state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the seconds remaining as of the last recomputation.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Remaining()
}

// Backgrounded reports whether the session is currently backgrounded.
func (s *Session) Backgrounded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Backgrounded()
}

// Result returns the scored result once the session is Submitted.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.state == StateSubmitted
}

// LastError returns the error from the most recent failed submission.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) Attempt() Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Questions returns the attempt's question list. Callers must treat it as
// read-only.
func (s *Session) Questions() []Question {
	return s.questions
}

// Current returns the index and content of the current question.
func (s *Session) Current() (int, Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return 0, Question{}
	}
	return s.current, s.questions[s.current]
}

// AnswerFor returns the recorded answer for questionID, if any.
func (s *Session) AnswerFor(questionID string) (Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Get(questionID)
}

// AnsweredCount returns how many questions have a recorded selection.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.AnsweredCount()
}

// Unanswered returns the IDs of questions without a selection, in order.
func (s *Session) Unanswered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Unanswered(s.questions)
}
