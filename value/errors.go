package value

import "github.com/kristofer/lemma/lerr"

// EmptyExpressionError reports, as a FailedToParse error, that a parse was
// attempted over input containing no forms, per spec.md §4.1.
func EmptyExpressionError() error {
	return lerr.Newf(lerr.FailedToParse, "empty input")
}
