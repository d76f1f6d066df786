package controller

import "errors"

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrWorkspaceMismatch = errors.New("API key does not belong to this agent's workspace")
	ErrRateLimited       = errors.New("Rate limit exceeded")

	ErrProviderKeyNotFound = errors.New("no active provider key configured for this agent")
	ErrCreateSession       = errors.New("failed to create session")
	ErrCallModel           = errors.New("error while calling model provider")
	ErrGetSessionMessages  = errors.New("failed to get session messages")

	ErrInvalidBridgeToken = errors.New("invalid or expired tool result token")
	ErrExecutionNotFound  = errors.New("tool execution not found")
	ErrExecutionFinalized = errors.New("tool execution already finalized")
)
