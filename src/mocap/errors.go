package mocap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTag is returned for blank or unlabeled marker tags.
	ErrInvalidTag = errors.New("invalid marker tag")
	// ErrMissingMetadata reports a required metadata key absent from row 0.
	ErrMissingMetadata = errors.New("missing metadata")
)

// FormatError reports required metadata that is absent or malformed.
type FormatError struct {
	Key string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %q: %v", e.Key, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UnknownTagError reports a tag that is not present in the header row.
type UnknownTagError struct {
	Tag Tag
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown marker tag %q", string(e.Tag))
}
