package extract

import (
	"errors"
	"fmt"
)

// Kind classifies why extraction failed.
type Kind int

const (
	// KindIO means the source could not be opened or read.
	KindIO Kind = iota + 1
	// KindParse means the document structure could not be decoded.
	KindParse
	// KindNetwork means the remote extractor could not be reached.
	KindNetwork
	// KindProtocol means the remote extractor answered with an unusable body.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindNetwork:
		return "network"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// ExtractionError reports a failed extraction of Path.
type ExtractionError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first ExtractionError in err's chain, or 0.
func KindOf(err error) Kind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return 0
}
