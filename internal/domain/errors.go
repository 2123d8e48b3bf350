package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a survey session does not exist or has expired.
	ErrSessionNotFound = errors.New("survey session not found")
	// ErrDatasetNotFound indicates the dataset could not be loaded.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrInvalidDataset is returned by loaders when a dataset breaks its invariants.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrAnswerOutOfRange rejects answers outside [MinAnswer, MaxAnswer].
	ErrAnswerOutOfRange = errors.New("answer out of range")
	// ErrWrongPhase is returned when an action is not allowed in the session's phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrSurveyIncomplete is returned when the answer vector has unset slots.
	ErrSurveyIncomplete = errors.New("survey incomplete")
	// ErrShareFailed wraps any failure of the export/upload pipeline.
	ErrShareFailed = errors.New("share failed")
	// ErrExportUnavailable is returned when no chart exporter is configured.
	ErrExportUnavailable = errors.New("chart export unavailable")
	// ErrUnsupportedFormat indicates an unknown image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrUnsupportedPlatform indicates an unknown share platform.
	ErrUnsupportedPlatform = errors.New("unsupported share platform")
)
