package services

import "errors"

// Shared service errors, grouped by kind; handlers map these onto HTTP
// statuses.
var (
	// Not found: the reference is caller-correctable.
	ErrNotFound           = errors.New("requested resource not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Validation and business rules.
	ErrValidationFailed         = errors.New("validation failed")
	ErrPlayerNameRequired       = errors.New("player name is required")
	ErrInvalidGameFormat        = errors.New("invalid game format")
	ErrWinnerNotParticipant     = errors.New("reported winner is not a participant of the match")
	ErrResultShapeMismatch      = errors.New("reported result does not fit the match form")
	ErrFixturesAlreadyExist     = errors.New("group fixtures already generated")
	ErrInvalidStatusTransition  = errors.New("invalid tournament status transition")
	ErrUnsupportedAvatarType    = errors.New("unsupported avatar content type")
	ErrAvatarStorageUnavailable = errors.New("avatar storage is not configured")

	// Conflicts.
	ErrPlayerNameConflict = errors.New("player name is already in use")
	ErrGameNameConflict   = errors.New("game name already exists")
	// ErrTournamentConflict surfaces after the optimistic retries are
	// exhausted.
	ErrTournamentConflict = errors.New("tournament is being modified concurrently, retry")

	// Storage.
	ErrStorageUnavailable = errors.New("storage unavailable or timed out")
)
