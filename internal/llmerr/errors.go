// Package llmerr defines the failure taxonomy shared by the generation and
// embedding gateways.
package llmerr

import (
	"errors"
	"fmt"
)

// Cause classifies why a provider call failed.
type Cause int

const (
	// CauseStatus means the server answered with a non-success status.
	CauseStatus Cause = iota + 1
	// CauseTransport means the request never reached the server.
	CauseTransport
	// CauseProcessing means the client failed to build the request or to
	// read a usable result out of the response.
	CauseProcessing
)

func (c Cause) String() string {
	switch c {
	case CauseStatus:
		return "server error"
	case CauseTransport:
		return "no response"
	case CauseProcessing:
		return "processing error"
	default:
		return "unknown"
	}
}

var (
	ErrGeneration = errors.New("generation failed")
	ErrEmbedding  = errors.New("embedding failed")
)

// Detail is the common payload of GenerationError and EmbeddingError.
type Detail struct {
	Provider   string
	Cause      Cause
	StatusCode int    // set when Cause is CauseStatus
	Message    string // provider message or local description
	Err        error
}

func (d Detail) describe(op string) string {
	switch d.Cause {
	case CauseStatus:
		if d.Message != "" {
			return fmt.Sprintf("%s: %s: %s returned status %d: %s", op, d.Cause, d.Provider, d.StatusCode, d.Message)
		}
		return fmt.Sprintf("%s: %s: %s returned status %d", op, d.Cause, d.Provider, d.StatusCode)
	case CauseTransport:
		return fmt.Sprintf("%s: %s: %s could not be reached: %v", op, d.Cause, d.Provider, d.Err)
	default:
		if d.Err != nil {
			return fmt.Sprintf("%s: %s: %s: %s: %v", op, d.Cause, d.Provider, d.Message, d.Err)
		}
		return fmt.Sprintf("%s: %s: %s: %s", op, d.Cause, d.Provider, d.Message)
	}
}

// GenerationError reports a failed chat/completion call.
type GenerationError struct{ Detail }

func (e *GenerationError) Error() string        { return e.describe("generate content") }
func (e *GenerationError) Unwrap() error        { return e.Err }
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// EmbeddingError reports a failed embeddings call.
type EmbeddingError struct{ Detail }

func (e *EmbeddingError) Error() string        { return e.describe("generate embeddings") }
func (e *EmbeddingError) Unwrap() error        { return e.Err }
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbedding }

// AsGeneration wraps d as a GenerationError.
func AsGeneration(d Detail) error { return &GenerationError{Detail: d} }

// AsEmbedding wraps d as an EmbeddingError.
func AsEmbedding(d Detail) error { return &EmbeddingError{Detail: d} }

// Status builds the detail for a non-success HTTP answer.
func Status(provider string, code int, message string) Detail {
	return Detail{Provider: provider, Cause: CauseStatus, StatusCode: code, Message: message}
}

// Transport builds the detail for a request that never got an answer.
func Transport(provider string, err error) Detail {
	return Detail{Provider: provider, Cause: CauseTransport, Err: err}
}

// Processing builds the detail for a local failure.
func Processing(provider, message string, err error) Detail {
	return Detail{Provider: provider, Cause: CauseProcessing, Message: message, Err: err}
}

// DetailOf extracts the failure detail from either error kind.
func DetailOf(err error) (Detail, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Detail, true
	}
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return ee.Detail, true
	}
	return Detail{}, false
}
