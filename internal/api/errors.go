package api

import "fmt"

// The zeitgeist service reports failures as a structured JSON payload with a
// "type" discriminator and a "message", plus kind-specific fields. An inner
// "error" object may nest another payload of the same shape, arbitrarily
// deep (e.g. CreateItemError wrapping RemoteError wrapping DuplicateError).
//
// Every kind below implements error; callers discriminate with errors.As.
// RemoteError and CreateItemError implement Unwrap, so errors.As also
// reaches nested causes.

// errorPayload is the wire shape of a failure response.
type errorPayload struct {
	Type    string        `json:"type"`
	Message string        `json:"message"`
	ID      int64         `json:"id"`
	URL     string        `json:"url"`
	Error   *errorPayload `json:"error"`
	Items   []itemPayload `json:"items"`
	Tags    []tagPayload  `json:"tags"`
}

// GenericError is an unclassified server failure. The original discriminator
// string (possibly empty) is preserved for diagnostics.
type GenericError struct {
	Type    string
	Message string
}

func (e *GenericError) Error() string {
	return e.Message
}

// ConnectionError reports a transport-level failure: connection refused,
// timeout, malformed response body, unexpected HTTP status. It never carries
// a server payload.
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string {
	return e.Message
}

// DuplicateError means the submitted content already exists; ID addresses
// the existing item.
type DuplicateError struct {
	Message string
	ID      int64
}

func (e *DuplicateError) Error() string {
	return e.Message
}

// RemoteError reports a failure fetching or processing one external URL.
type RemoteError struct {
	Message string
	URL     string
	Cause   error
}

func (e *RemoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s", e.Message, e.URL, e.Cause.Error())
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// CreateItemError is the partial-failure outcome of a multi-item submission.
// Items holds the siblings that were created before the failure; callers
// must still record them into channel history so they remain addressable.
type CreateItemError struct {
	Message string
	Cause   error
	Items   []Item
}

func (e *CreateItemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *CreateItemError) Unwrap() error {
	return e.Cause
}

// decodeErrorPayload turns a failure payload into the matching error kind.
// Decoding is total: unknown or absent discriminators fall back to
// GenericError rather than failing.
func decodeErrorPayload(p *errorPayload) error {
	var cause error
	if p.Error != nil {
		cause = decodeErrorPayload(p.Error)
	}

	switch p.Type {
	case "DuplicateError":
		return &DuplicateError{Message: p.Message, ID: p.ID}
	case "RemoteError":
		return &RemoteError{Message: p.Message, URL: p.URL, Cause: cause}
	case "CreateItemError":
		return &CreateItemError{
			Message: p.Message,
			Cause:   cause,
			Items:   partialItems(p.Items, p.Tags),
		}
	default:
		return &GenericError{Type: p.Type, Message: p.Message}
	}
}

// partialItems decodes the partially-created items of a CreateItemError.
// Unlike success decoding this is lenient: an entry missing required fields
// is skipped, since it cannot be addressed anyway.
func partialItems(payloads []itemPayload, tags []tagPayload) []Item {
	var items []Item
	for i := range payloads {
		item, err := itemFromPayload(&payloads[i], tags)
		if err != nil {
			continue
		}
		items = append(items, *item)
	}
	return items
}
