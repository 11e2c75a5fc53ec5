// Package common defines shared sentinel errors used across the bot core.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store / lookup errors.
	ErrorNotFound = errors.New("not found")

	// User directory errors.
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrorNickservRequired = errors.New("nickserv identification required")
	ErrorAliasTaken       = errors.New("alias already taken")
	ErrorUnknownOption    = errors.New("unknown option")
)
