// Package session drives one exam from generation through scoring and
// review.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/ingest"
	"github.com/simtai/simtai/internal/sse"
)

// Generator issues a generation request and returns the event stream.
// client.Client implements it.
type Generator interface {
	Generate(ctx context.Context, req exam.GenerationRequest) (io.ReadCloser, error)
}

// FolderPicker asks the host for a directory. ok is false when the user
// cancels.
type FolderPicker interface {
	PickFolder(ctx context.Context) (path string, ok bool, err error)
}

// Options configures a Machine.
type Options struct {
	Generator Generator

	// Store is the persisted context slot. Nil uses an in-memory store.
	Store ingest.ContextStore

	// Picker is the host folder picker. Nil disables random-folder mode.
	Picker FolderPicker

	// Log receives diagnostics. Nil allocates a default-capacity log.
	Log *ingest.Log

	// ChunkSize is the stream read size. Zero uses sse.DefaultChunkSize.
	ChunkSize int

	// Now overrides the clock.
	Now func() time.Time
}

// Machine is the exam state machine. All methods are safe for concurrent
// use; stream events are fenced by Run so a superseded stream cannot touch
// the current session.
type Machine struct {
	mu sync.Mutex

	gen       Generator
	store     ingest.ContextStore
	picker    FolderPicker
	log       *ingest.Log
	chunkSize int
	now       func() time.Time

	state     State
	reviewing bool
	filter    exam.ReviewFilter
	sessionID string
	cfg       *exam.SessionConfig
	lastErr   error

	runSeq uint64
	run    *Run
	agg    *ingest.Aggregator

	questions  []exam.Question
	records    []exam.AnswerRecord
	index      int
	startedAt  time.Time
	deadline   time.Time
	finishedAt time.Time
	expired    bool
}

// New returns an idle Machine.
func New(opts Options) *Machine {
	m := &Machine{
		gen:       opts.Generator,
		store:     opts.Store,
		picker:    opts.Picker,
		log:       opts.Log,
		chunkSize: opts.ChunkSize,
		now:       opts.Now,
	}
	if m.store == nil {
		m.store = ingest.NewMemoryStore()
	}
	if m.log == nil {
		m.log = ingest.NewLog(0)
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Start snapshots cfg, clears the previous session and begins a generation.
// It is allowed from Idle and Finished. The returned Run has not contacted
// the service yet; call Open or Consume on it.
func (m *Machine) Start(ctx context.Context, cfg exam.SessionConfig) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked(ctx, cfg)
}

func (m *Machine) startLocked(ctx context.Context, cfg exam.SessionConfig) (*Run, error) {
	switch m.state {
	case StateGenerating:
		return nil, ErrBusy
	case StatePresenting:
		return nil, ErrInvalidState
	}
	if err := cfg.Validate(); err != nil {
		m.lastErr = err
		return nil, err
	}
	if m.gen == nil {
		return nil, fmt.Errorf("no generation service configured")
	}

	snapshot := cfg
	m.cfg = &snapshot
	m.resetSession()
	m.log.Clear()
	m.lastErr = nil

	var fallback string
	if !cfg.HasMaterial() {
		content, ok, err := m.store.GetContext(ctx)
		switch {
		case err != nil:
			m.log.Appendf("[ERROR] reading saved context: %v", err)
		case ok:
			fallback = content
			m.log.Appendf("Using saved context (%d chars)", len([]rune(content)))
		}
	}

	m.runSeq++
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		m:       m,
		id:      m.runSeq,
		ctx:     runCtx,
		cancel:  cancel,
		Request: cfg.Request(fallback),
	}
	m.run = run
	m.agg = ingest.NewAggregator(m.log, m.store)
	m.sessionID = uuid.NewString()
	m.state = StateGenerating
	m.log.Appendf("Requesting %d questions (%s)", cfg.NumQuestions, run.Request.Difficulty)
	return run, nil
}

// Apply feeds one stream event to the session. Events from a run that is
// no longer current are dropped. It returns true once the run is over and
// the caller should stop reading.
func (m *Machine) Apply(r *Run, ev sse.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(r) {
		return true
	}
	if m.agg.Handle(r.ctx, ev) {
		m.finishRun()
		return true
	}
	return false
}

// Fail ends the run with a transport failure.
func (m *Machine) Fail(r *Run, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(r) {
		return
	}
	m.agg.Fail(err)
	m.finishRun()
}

// Complete ends the run when the stream closed without the sentinel.
func (m *Machine) Complete(r *Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(r) {
		return
	}
	m.agg.Close()
	m.finishRun()
}

func (m *Machine) current(r *Run) bool {
	return r != nil && m.run == r && m.state == StateGenerating
}

// finishRun moves out of Generating according to the aggregator result.
func (m *Machine) finishRun() {
	res := m.agg.Result()
	m.run.cancel()
	m.run = nil

	switch {
	case res.Err != nil:
		m.lastErr = res.Err
		m.state = StateIdle
	case len(res.Questions) == 0:
		m.log.Append(ErrNoQuestions.Error())
		m.lastErr = ErrNoQuestions
		m.state = StateIdle
	default:
		m.questions = res.Questions
		m.records = make([]exam.AnswerRecord, len(res.Questions))
		for i, q := range res.Questions {
			m.records[i] = exam.BlankRecord(q)
		}
		m.index = 0
		m.startedAt = m.now()
		m.deadline = m.startedAt.Add(m.cfg.TimeLimit())
		m.state = StatePresenting
	}
}

// Cancel abandons an in-flight generation and returns to Idle.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateGenerating {
		return ErrInvalidState
	}
	m.dropRun()
	m.log.Append("Generation canceled")
	m.resetSession()
	m.state = StateIdle
	return nil
}

func (m *Machine) dropRun() {
	if m.run != nil {
		m.run.cancel()
		m.run = nil
	}
	m.agg = nil
}

func (m *Machine) resetSession() {
	m.questions = nil
	m.records = nil
	m.index = 0
	m.reviewing = false
	m.filter = ""
	m.startedAt = time.Time{}
	m.deadline = time.Time{}
	m.finishedAt = time.Time{}
	m.expired = false
}

// Select answers the current question with option i. The latest selection
// wins until the exam is finished.
func (m *Machine) Select(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePresenting {
		return ErrInvalidState
	}
	q := m.questions[m.index]
	if i < 0 || i >= len(q.Options) {
		return ErrInvalidOption
	}
	m.records[m.index] = exam.AnswerRecord{
		QuestionID: q.Key(),
		Selected:   i,
		Correct:    q.IsCorrect(i),
		Answered:   true,
	}
	return nil
}

// Next moves to the following question. At the last question it is a no-op.
func (m *Machine) Next() error {
	return m.move(1)
}

// Prev moves to the previous question. At the first question it is a no-op.
func (m *Machine) Prev() error {
	return m.move(-1)
}

// Goto jumps to question i, clamped to the question range.
func (m *Machine) Goto(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePresenting {
		return ErrInvalidState
	}
	m.index = max(0, min(i, len(m.questions)-1))
	return nil
}

func (m *Machine) move(delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePresenting {
		return ErrInvalidState
	}
	m.index = max(0, min(m.index+delta, len(m.questions)-1))
	return nil
}

// Finish ends the exam and freezes answering.
func (m *Machine) Finish() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishLocked(false)
}

// Expire ends the exam because the time limit ran out.
func (m *Machine) Expire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishLocked(true)
}

func (m *Machine) finishLocked(expired bool) error {
	if m.state != StatePresenting {
		return ErrInvalidState
	}
	m.state = StateFinished
	m.expired = expired
	m.finishedAt = m.now()
	if expired {
		m.log.Append("Time is up")
	}
	return nil
}

// Tick expires the exam once now reaches the deadline. It reports whether
// this call finished the exam.
func (m *Machine) Tick(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePresenting || m.deadline.IsZero() || now.Before(m.deadline) {
		return false
	}
	return m.finishLocked(true) == nil
}

// Remaining is the time left before the deadline. ok is false when the
// exam is not in progress.
func (m *Machine) Remaining(now time.Time) (d time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePresenting || m.deadline.IsZero() {
		return 0, false
	}
	return max(0, m.deadline.Sub(now)), true
}

// Deadline is when the exam expires, zero before questions arrive.
func (m *Machine) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

// Retry starts a new generation from the last configuration, optionally
// with a different difficulty. Without a retained configuration the
// session returns to Idle and ErrNoConfig is returned.
func (m *Machine) Retry(ctx context.Context, d exam.Difficulty) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateFinished {
		return nil, ErrInvalidState
	}
	if m.cfg == nil {
		m.resetSession()
		m.state = StateIdle
		return nil, ErrNoConfig
	}
	return m.startLocked(ctx, m.cfg.WithDifficulty(d))
}

// Restart returns to Idle from any state, abandoning an in-flight
// generation. The configuration and the saved context are kept.
func (m *Machine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRun()
	m.resetSession()
	m.state = StateIdle
}

// EnterReview shows the questions matching filter. Only allowed once the
// exam is finished.
func (m *Machine) EnterReview(filter exam.ReviewFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateFinished {
		return ErrInvalidState
	}
	switch filter {
	case exam.ReviewCorrect, exam.ReviewIncorrect, exam.ReviewUnanswered:
	default:
		return fmt.Errorf("unknown review filter %q", filter)
	}
	m.reviewing = true
	m.filter = filter
	return nil
}

// ExitReview returns to the score view.
func (m *Machine) ExitReview() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateFinished || !m.reviewing {
		return ErrInvalidState
	}
	m.reviewing = false
	m.filter = ""
	return nil
}

// Review lists the questions matching filter, in exam order.
func (m *Machine) Review(filter exam.ReviewFilter) []ReviewItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ReviewItem
	for i, r := range m.records {
		if filter.Match(r) {
			out = append(out, ReviewItem{Index: i, Question: m.questions[i], Record: r})
		}
	}
	return out
}

// Score is computed from the current answer records on every call.
func (m *Machine) Score() exam.Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	return exam.ComputeScore(len(m.questions), m.records)
}

// Summary describes the finished exam. ok is false before Finished.
func (m *Machine) Summary() (s Summary, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateFinished {
		return Summary{}, false
	}
	s = Summary{
		SessionID: m.sessionID,
		Score:     exam.ComputeScore(len(m.questions), m.records),
		Duration:  m.finishedAt.Sub(m.startedAt),
		Expired:   m.expired,
	}
	if m.cfg != nil {
		s.Config = *m.cfg
	}
	return s, true
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reviewing reports whether the review view is open, and its filter.
func (m *Machine) Reviewing() (exam.ReviewFilter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter, m.reviewing
}

// Current returns the question on screen. ok is false when there are no
// questions.
func (m *Machine) Current() (c Current, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.questions) == 0 {
		return Current{}, false
	}
	return Current{
		Index:    m.index,
		Total:    len(m.questions),
		Question: m.questions[m.index],
		Record:   m.records[m.index],
	}, true
}

// Records returns a copy of the answer records.
func (m *Machine) Records() []exam.AnswerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]exam.AnswerRecord(nil), m.records...)
}

// Questions returns a copy of the session questions.
func (m *Machine) Questions() []exam.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]exam.Question(nil), m.questions...)
}

// Progress reports accepted and requested counts. During Generating,
// Accepted counts questions streamed so far.
func (m *Machine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	var p Progress
	if m.cfg != nil {
		p.Requested = m.cfg.NumQuestions
	}
	if m.state == StateGenerating && m.agg != nil {
		p.Accepted = m.agg.Accepted()
	} else {
		p.Accepted = len(m.questions)
	}
	return p
}

// Config returns the last configuration snapshot.
func (m *Machine) Config() (exam.SessionConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return exam.SessionConfig{}, false
	}
	return *m.cfg, true
}

// SessionID identifies the current session. It changes on every Start.
func (m *Machine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// LastError is the short error shown on the start screen.
func (m *Machine) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError dismisses the last error.
func (m *Machine) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = nil
}

// Log returns the diagnostic log.
func (m *Machine) Log() *ingest.Log {
	return m.log
}

// Store returns the persisted context slot.
func (m *Machine) Store() ingest.ContextStore {
	return m.store
}

// SavedContext reads the persisted context slot.
func (m *Machine) SavedContext(ctx context.Context) (string, bool, error) {
	return m.store.GetContext(ctx)
}

// CanPickFolder reports whether random-folder mode is available.
func (m *Machine) CanPickFolder() bool {
	return m.picker != nil
}

// PickFolder asks the host for a study folder.
func (m *Machine) PickFolder(ctx context.Context) (string, bool, error) {
	if m.picker == nil {
		return "", false, ErrPickerUnavailable
	}
	return m.picker.PickFolder(ctx)
}
