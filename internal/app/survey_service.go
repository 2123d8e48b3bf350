package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"wahlnetz-service/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Add(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, bool)
	// Touch is called after every change so stores can refresh snapshots and TTLs.
	Touch(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sessionID string)
}

// DatasetRepository loads datasets (from cache/backing store).
type DatasetRepository interface {
	GetDataset(ctx context.Context, datasetID string) (domain.Dataset, error)
}

// ChartExporter renders a chart to an encoded image.
type ChartExporter interface {
	Export(ctx context.Context, chart domain.Chart, format domain.ImageFormat) (domain.Image, error)
}

// ImageUploader publishes an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, img domain.Image) (string, error)
}

// ShareLinker builds platform share links for a URL.
type ShareLinker interface {
	Links(sharedURL string, platforms []domain.SharePlatform) ([]domain.ShareLink, error)
}

// SurveyService contains the survey use cases.
type SurveyService struct {
	sessions       SessionRepository
	datasets       DatasetRepository
	defaultDataset string
	exporter       ChartExporter
	uploader       ImageUploader
	linker         ShareLinker
	newID          func() string
	logger         *slog.Logger
}

// Option configures a SurveyService.
type Option func(*SurveyService)

// WithDefaultDataset sets the dataset used when a client does not name one.
func WithDefaultDataset(id string) Option {
	return func(s *SurveyService) { s.defaultDataset = id }
}

// WithExporter enables image export.
func WithExporter(e ChartExporter) Option {
	return func(s *SurveyService) { s.exporter = e }
}

// WithSharing enables uploading and share links.
func WithSharing(u ImageUploader, l ShareLinker) Option {
	return func(s *SurveyService) {
		s.uploader = u
		s.linker = l
	}
}

// WithIDGenerator replaces the uuid session id generator (tests).
func WithIDGenerator(gen func() string) Option {
	return func(s *SurveyService) { s.newID = gen }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *SurveyService) { s.logger = l }
}

func NewSurveyService(store SessionRepository, datasets DatasetRepository, opts ...Option) *SurveyService {
	s := &SurveyService{
		sessions: store,
		datasets: datasets,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dataset returns a dataset by id, or the default one when id is empty.
func (s *SurveyService) Dataset(ctx context.Context, datasetID string) (domain.Dataset, error) {
	if datasetID == "" {
		datasetID = s.defaultDataset
	}
	return s.datasets.GetDataset(ctx, datasetID)
}

// CreateSession opens a new session on the welcome page.
func (s *SurveyService) CreateSession(ctx context.Context, datasetID string) (domain.SessionState, error) {
	ds, err := s.Dataset(ctx, datasetID)
	if err != nil {
		return domain.SessionState{}, err
	}
	session := NewSession(s.newID(), ds)
	if err := s.sessions.Add(ctx, session); err != nil {
		return domain.SessionState{}, fmt.Errorf("store session: %w", err)
	}
	s.logger.Info("session created", "session", session.ID(), "dataset", ds.ID)
	return session.State(), nil
}

// State returns the current snapshot of a session.
func (s *SurveyService) State(ctx context.Context, sessionID string) (domain.SessionState, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	return session.State(), nil
}

// Start moves a session from the welcome page to the first question.
func (s *SurveyService) Start(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.mutate(ctx, sessionID, (*Session).Start)
}

// SubmitAnswer records the answer to the current question.
func (s *SurveyService) SubmitAnswer(ctx context.Context, sessionID string, value int) (domain.SessionState, error) {
	return s.mutate(ctx, sessionID, func(session *Session) (domain.SessionState, error) {
		return session.SubmitAnswer(value)
	})
}

// ToggleParty flips a party's visibility on the result page.
func (s *SurveyService) ToggleParty(ctx context.Context, sessionID, party string) (domain.SessionState, error) {
	return s.mutate(ctx, sessionID, func(session *Session) (domain.SessionState, error) {
		return session.ToggleParty(party)
	})
}

// ToggleTopic flips a topic's visibility on the result page.
func (s *SurveyService) ToggleTopic(ctx context.Context, sessionID, topic string) (domain.SessionState, error) {
	return s.mutate(ctx, sessionID, func(session *Session) (domain.SessionState, error) {
		return session.ToggleTopic(topic)
	})
}

// Result returns the chart and leader table of a finished session.
func (s *SurveyService) Result(ctx context.Context, sessionID string) (domain.ResultView, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.ResultView{}, err
	}
	return session.Result()
}

// ExportImage renders the session's current chart.
func (s *SurveyService) ExportImage(ctx context.Context, sessionID string, format domain.ImageFormat) (domain.Image, error) {
	if s.exporter == nil {
		return domain.Image{}, domain.ErrExportUnavailable
	}
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.Image{}, err
	}
	chart, err := session.Chart()
	if err != nil {
		return domain.Image{}, err
	}
	return s.exporter.Export(ctx, chart, format)
}

// Share exports the chart as JPEG, uploads it and builds share links. Every
// failure is reported as ErrShareFailed; the session itself is never changed.
func (s *SurveyService) Share(ctx context.Context, sessionID string, platforms []domain.SharePlatform) (domain.ShareResult, error) {
	if s.uploader == nil || s.linker == nil {
		return domain.ShareResult{}, fmt.Errorf("%w: %w", domain.ErrShareFailed, domain.ErrExportUnavailable)
	}
	if len(platforms) == 0 {
		platforms = domain.AllPlatforms
	}
	img, err := s.ExportImage(ctx, sessionID, domain.FormatJPEG)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSurveyIncomplete) {
			return domain.ShareResult{}, err
		}
		s.logger.Warn("chart export failed", "session", sessionID, "error", err)
		return domain.ShareResult{}, fmt.Errorf("%w: export: %w", domain.ErrShareFailed, err)
	}
	url, err := s.uploader.Upload(ctx, img)
	if err != nil {
		s.logger.Warn("chart upload failed", "session", sessionID, "error", err)
		return domain.ShareResult{}, fmt.Errorf("%w: upload: %w", domain.ErrShareFailed, err)
	}
	links, err := s.linker.Links(url, platforms)
	if err != nil {
		return domain.ShareResult{}, fmt.Errorf("%w: %w", domain.ErrShareFailed, err)
	}
	s.logger.Info("chart shared", "session", sessionID, "url", url)
	return domain.ShareResult{ImageURL: url, Links: links}, nil
}

// Subscribe returns a channel that receives every state change of a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *SurveyService) Subscribe(ctx context.Context, sessionID string) (<-chan domain.SessionState, func(), error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// EndSession drops a session and closes its subscriptions.
func (s *SurveyService) EndSession(ctx context.Context, sessionID string) error {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	s.sessions.Delete(ctx, sessionID)
	session.Close()
	s.logger.Info("session ended", "session", sessionID)
	return nil
}

func (s *SurveyService) session(ctx context.Context, sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SurveyService) mutate(ctx context.Context, sessionID string, fn func(*Session) (domain.SessionState, error)) (domain.SessionState, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	state, err := fn(session)
	if err != nil {
		return state, err
	}
	if err := s.sessions.Touch(ctx, session); err != nil {
		// The in-process session is authoritative; a stale snapshot is only logged.
		s.logger.Warn("session snapshot not stored", "session", sessionID, "error", err)
	}
	return state, nil
}
