package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found") // General not found

	// User & Authentication Errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Game lifecycle errors
	ErrGameNotPublished = errors.New("game is not published")
	ErrGameNotPlayable  = errors.New("game has no playable content")

	// Session & Play errors
	ErrSessionFinished    = errors.New("session is already finished")
	ErrNoActiveCharacter  = errors.New("session has no active character")
	ErrActionNotAvailable = errors.New("action is not available at the current position")

	// Authoring errors
	ErrValidation = errors.New("authored game data is invalid")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
