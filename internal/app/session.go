package app

import (
	"sync"
	"time"

	"wahlnetz-service/internal/domain"
)

// Session is one pass through the survey: welcome, one answer per question in
// catalog order, then the result page with its filters.
type Session struct {
	id          string
	dataset     domain.Dataset
	now         func() time.Time
	mu          sync.RWMutex
	phase       domain.Phase
	index       int
	answers     []int
	filters     Filters
	updatedAt   time.Time
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession starts a session in the welcome phase.
func NewSession(id string, ds domain.Dataset) *Session {
	return NewSessionWithClock(id, ds, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, ds domain.Dataset, now func() time.Time) *Session {
	return &Session{
		id:          id,
		dataset:     ds,
		now:         now,
		phase:       domain.PhaseWelcome,
		answers:     make([]int, len(ds.Questions)),
		filters:     NewFilters(ds),
		updatedAt:   now(),
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Dataset returns the dataset the session was created with.
func (s *Session) Dataset() domain.Dataset { return s.dataset }

// Start leaves the welcome page and presents the first question.
func (s *Session) Start() (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseWelcome {
		return s.snapshotLocked(), domain.ErrWrongPhase
	}
	s.phase = domain.PhaseAnswering
	s.index = 0
	return s.broadcastLocked(), nil
}

// SubmitAnswer stores value for the current question and advances. Values
// outside [MinAnswer, MaxAnswer] are rejected and leave the session unchanged.
func (s *Session) SubmitAnswer(value int) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAnswering || s.index < 0 || s.index >= len(s.answers) {
		return s.snapshotLocked(), domain.ErrWrongPhase
	}
	if value < domain.MinAnswer || value > domain.MaxAnswer {
		return s.snapshotLocked(), domain.ErrAnswerOutOfRange
	}

	last := len(s.answers) - 1
	prev := s.answers[s.index]
	s.answers[s.index] = value
	if s.index < last {
		s.index++
		return s.broadcastLocked(), nil
	}
	if !s.completeLocked() {
		s.answers[s.index] = prev
		return s.snapshotLocked(), domain.ErrSurveyIncomplete
	}
	s.phase = domain.PhaseResult
	return s.broadcastLocked(), nil
}

// ToggleParty flips one party's visibility on the result page. Unknown names are ignored.
func (s *Session) ToggleParty(name string) (domain.SessionState, error) {
	return s.toggle(func(f *Filters) bool { return f.ToggleParty(name) })
}

// ToggleTopic flips one topic's visibility on the result page. Unknown topics are ignored.
func (s *Session) ToggleTopic(topic string) (domain.SessionState, error) {
	return s.toggle(func(f *Filters) bool { return f.ToggleTopic(topic) })
}

func (s *Session) toggle(apply func(f *Filters) bool) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseResult {
		return s.snapshotLocked(), domain.ErrWrongPhase
	}
	if !apply(&s.filters) {
		return s.snapshotLocked(), nil
	}
	return s.broadcastLocked(), nil
}

// State returns a snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Chart builds the radar data for the current filters. Only available on the result page.
func (s *Session) Chart() (domain.Chart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != domain.PhaseResult {
		return domain.Chart{}, domain.ErrSurveyIncomplete
	}
	return BuildChart(s.dataset, s.answers, s.filters), nil
}

// Result bundles the chart and the leading-party table.
func (s *Session) Result() (domain.ResultView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != domain.PhaseResult {
		return domain.ResultView{}, domain.ErrSurveyIncomplete
	}
	return domain.ResultView{
		SessionID: s.id,
		Chart:     BuildChart(s.dataset, s.answers, s.filters),
		Leaders:   LeaderTable(s.dataset, s.filters),
	}, nil
}

// UpdatedAt reports when the session last changed.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Session) completeLocked() bool {
	for _, a := range s.answers {
		if a == 0 {
			return false
		}
	}
	return true
}

func (s *Session) subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close ends every subscription. Stores call it when they drop the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked() domain.SessionState {
	s.updatedAt = s.now()
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Slow subscriber: replace its stale snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (s *Session) snapshotLocked() domain.SessionState {
	parties, topics := s.filters.Entries(s.dataset)
	state := domain.SessionState{
		SessionID:     s.id,
		DatasetID:     s.dataset.ID,
		Phase:         s.phase,
		QuestionIndex: s.index,
		Total:         len(s.dataset.Questions),
		Answers:       append([]int(nil), s.answers...),
		PartyFilter:   parties,
		TopicFilter:   topics,
		UpdatedAt:     s.updatedAt,
	}
	if s.phase == domain.PhaseAnswering && s.index < len(s.dataset.Questions) {
		q := s.dataset.Questions[s.index]
		state.Question = &q
	}
	return state
}
