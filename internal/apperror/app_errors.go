package apperror

import "errors"

var (
	ErrBlankField        = errors.New("field cannot be blank")
	ErrInvalidRow        = errors.New("row must be one of A-J")
	ErrInvalidCol        = errors.New("col must be between 1 and 10")
	ErrUserNotFound      = errors.New("user does not exist")
	ErrGameNotFound      = errors.New("game does not exist")
	ErrSameUsers         = errors.New("users cannot be the same")
	ErrUserNotInGame     = errors.New("user is not playing this game")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrFleetIncomplete   = errors.New("could not place every ship on the board")

	ErrGameInProgress    = errors.New("a game is currently in progress for these users")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
)

var validationErrors = []error{
	ErrBlankField,
	ErrInvalidRow,
	ErrInvalidCol,
	ErrUserNotFound,
	ErrGameNotFound,
	ErrSameUsers,
	ErrUserNotInGame,
	ErrGameNotInProgress,
	ErrFleetIncomplete,
}

var conflictErrors = []error{
	ErrGameInProgress,
	ErrUserAlreadyExists,
}

// KindOf - classifies a possibly wrapped error.
func KindOf(err error) Kind {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return KindConflict
		}
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}

	return KindInternal
}
