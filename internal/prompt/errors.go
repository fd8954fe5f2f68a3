package prompt

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDocument        = errors.New("missing document")
	ErrUnsupportedRequestType = errors.New("unsupported request type")
)

// MissingDocumentError reports a required context document that was not
// supplied.
type MissingDocumentError struct {
	Name        string
	RequestType RequestType
}

func (e *MissingDocumentError) Error() string {
	return fmt.Sprintf("%s request requires context document %q", e.RequestType, e.Name)
}

func (e *MissingDocumentError) Is(target error) bool { return target == ErrMissingDocument }

// UnsupportedRequestTypeError reports a request type outside the enumeration.
type UnsupportedRequestTypeError struct {
	RequestType string
}

func (e *UnsupportedRequestTypeError) Error() string {
	return fmt.Sprintf("unsupported request type %q", e.RequestType)
}

func (e *UnsupportedRequestTypeError) Is(target error) bool {
	return target == ErrUnsupportedRequestType
}
