package app

import (
	"errors"
	"testing"
	"time"

	"wahlnetz-service/internal/domain"
)

func TestSessionWalksThroughPhases(t *testing.T) {
	session := newTestSession()
	if st := session.State(); st.Phase != domain.PhaseWelcome || st.QuestionIndex != 0 {
		t.Fatalf("expected welcome at index 0, got %+v", st)
	}

	st, err := session.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if st.Phase != domain.PhaseAnswering || st.Question == nil || st.Question.Topic != "A" {
		t.Fatalf("expected first question, got %+v", st)
	}
	for _, a := range st.Answers {
		if a != 0 {
			t.Fatalf("expected start to leave answers unset, got %v", st.Answers)
		}
	}

	st, err = session.SubmitAnswer(4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if st.Phase != domain.PhaseAnswering || st.QuestionIndex != 1 {
		t.Fatalf("expected answering(1), got %+v", st)
	}
	if st.Answers[0] != 4 || st.Answers[1] != 0 {
		t.Fatalf("expected only slot 0 set, got %v", st.Answers)
	}

	st, err = session.SubmitAnswer(10)
	if err != nil {
		t.Fatalf("submit last: %v", err)
	}
	if st.Phase != domain.PhaseResult {
		t.Fatalf("expected result, got %s", st.Phase)
	}
	if len(st.Answers) != 2 || st.Answers[0] != 4 || st.Answers[1] != 10 {
		t.Fatalf("expected full answer vector, got %v", st.Answers)
	}
	if st.Question != nil {
		t.Fatalf("expected no current question on result page")
	}
}

func TestSessionSubmitEveryValidValue(t *testing.T) {
	for v := domain.MinAnswer; v <= domain.MaxAnswer; v++ {
		session := newTestSession()
		_, _ = session.Start()
		st, err := session.SubmitAnswer(v)
		if err != nil {
			t.Fatalf("submit %d: %v", v, err)
		}
		if st.QuestionIndex != 1 || st.Answers[0] != v || st.Answers[1] != 0 {
			t.Fatalf("value %d: unexpected state %+v", v, st)
		}
	}
}

func TestSessionRejectsOutOfRangeAnswers(t *testing.T) {
	session := newTestSession()
	_, _ = session.Start()
	before := session.State()

	for _, v := range []int{0, -3, 11, 100} {
		st, err := session.SubmitAnswer(v)
		if !errors.Is(err, domain.ErrAnswerOutOfRange) {
			t.Fatalf("value %d: expected ErrAnswerOutOfRange, got %v", v, err)
		}
		if st.QuestionIndex != before.QuestionIndex || st.Answers[0] != 0 || st.Phase != domain.PhaseAnswering {
			t.Fatalf("value %d: expected unchanged state, got %+v", v, st)
		}
	}
}

func TestSessionRejectsActionsInWrongPhase(t *testing.T) {
	session := newTestSession()
	if _, err := session.SubmitAnswer(5); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("expected submit before start to fail, got %v", err)
	}
	if _, err := session.ToggleParty("X"); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("expected toggle before result to fail, got %v", err)
	}
	if _, err := session.Chart(); !errors.Is(err, domain.ErrSurveyIncomplete) {
		t.Fatalf("expected chart before result to fail, got %v", err)
	}

	_, _ = session.Start()
	if _, err := session.Start(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("expected second start to fail, got %v", err)
	}
	if _, err := session.ToggleTopic("A"); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("expected toggle while answering to fail, got %v", err)
	}

	_, _ = session.SubmitAnswer(5)
	_, _ = session.SubmitAnswer(5)
	if _, err := session.SubmitAnswer(5); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("expected submit on result page to fail, got %v", err)
	}
}

func TestSessionTogglesOnResultPage(t *testing.T) {
	session := finishedSession(t, 5, 5)

	st, err := session.ToggleParty("X")
	if err != nil {
		t.Fatalf("toggle party: %v", err)
	}
	if st.PartyFilter[0] != (domain.FilterEntry{Key: "X", Visible: false}) || !st.PartyFilter[1].Visible {
		t.Fatalf("expected only X hidden, got %+v", st.PartyFilter)
	}
	for _, e := range st.TopicFilter {
		if !e.Visible {
			t.Fatalf("party toggle touched topic filter: %+v", st.TopicFilter)
		}
	}
	if st.Phase != domain.PhaseResult || st.Answers[0] != 5 {
		t.Fatalf("toggle changed phase or answers: %+v", st)
	}

	st, err = session.ToggleParty("Unknown")
	if err != nil {
		t.Fatalf("unknown party should be ignored, got %v", err)
	}
	if st.PartyFilter[0].Visible || !st.PartyFilter[1].Visible {
		t.Fatalf("unknown key changed filters: %+v", st.PartyFilter)
	}

	chart, err := session.Chart()
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	for _, row := range chart.Rows {
		if _, ok := row.Value("X"); ok {
			t.Fatalf("hidden party X present in row %+v", row)
		}
	}
}

func TestSessionSubscribeReceivesUpdates(t *testing.T) {
	session := newTestSession()
	ch, cancel := session.subscribe()
	defer cancel()

	initial := <-ch
	if initial.Phase != domain.PhaseWelcome {
		t.Fatalf("expected initial welcome snapshot, got %s", initial.Phase)
	}

	_, _ = session.Start()
	update := <-ch
	if update.Phase != domain.PhaseAnswering {
		t.Fatalf("expected answering update, got %s", update.Phase)
	}

	// A rejected answer must not broadcast anything.
	_, _ = session.SubmitAnswer(42)
	select {
	case st := <-ch:
		t.Fatalf("unexpected broadcast after rejected answer: %+v", st)
	default:
	}
}

func TestSessionSlowSubscriberGetsLatestState(t *testing.T) {
	session := finishedSession(t, 3, 3)
	ch, cancel := session.subscribe()
	defer cancel()

	// Nobody reads while 21 toggles are broadcast; the buffer overflows.
	for i := 0; i < 21; i++ {
		if _, err := session.ToggleParty("X"); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	last := drain(ch)
	if last.PartyFilter[0].Visible {
		t.Fatalf("expected latest snapshot with X hidden, got %+v", last.PartyFilter)
	}
}

func drain(ch <-chan domain.SessionState) domain.SessionState {
	var last domain.SessionState
	for {
		select {
		case st := <-ch:
			last = st
		default:
			return last
		}
	}
}

func TestSessionUpdatedAtUsesClock(t *testing.T) {
	now := time.Date(2025, 2, 23, 18, 0, 0, 0, time.UTC)
	session := NewSessionWithClock("s1", sampleDataset(), func() time.Time { return now })
	now = now.Add(time.Minute)
	_, _ = session.Start()
	if !session.UpdatedAt().Equal(now) {
		t.Fatalf("expected updatedAt %v, got %v", now, session.UpdatedAt())
	}
}

func newTestSession() *Session {
	return NewSession("s1", sampleDataset())
}

func finishedSession(t *testing.T, answers ...int) *Session {
	t.Helper()
	session := newTestSession()
	if _, err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, a := range answers {
		if _, err := session.SubmitAnswer(a); err != nil {
			t.Fatalf("submit %d: %v", a, err)
		}
	}
	if session.Phase() != domain.PhaseResult {
		t.Fatalf("expected result phase, got %s", session.Phase())
	}
	return session
}

// sampleDataset is catalog [A, B] with X:[3,7] and Y:[9,7].
func sampleDataset() domain.Dataset {
	return domain.Dataset{
		ID: "sample",
		Questions: []domain.Question{
			{ID: 0, Topic: "A", Prompt: "A?"},
			{ID: 1, Topic: "B", Prompt: "B?"},
		},
		Parties: []domain.Party{
			{Name: "X", Color: "#000000", Scores: []float64{3, 7}},
			{Name: "Y", Color: "#E3000F", Scores: []float64{9, 7}},
		},
	}
}
