package jobspec

import "fmt"

// UnrecognizedFilterError reports input that matches no clause production.
// Remainder holds the unconsumed text starting at the failure position.
type UnrecognizedFilterError struct {
	Remainder string
}

func (e *UnrecognizedFilterError) Error() string {
	return fmt.Sprintf("unrecognized filter: %q", e.Remainder)
}

// UnknownEncoderError reports an enc= value outside the supported set.
type UnknownEncoderError struct {
	Name string
}

func (e *UnknownEncoderError) Error() string {
	return fmt.Sprintf("unrecognized video encoder %q", e.Name)
}

// UnknownAudioEncoderError reports an aenc= value outside the supported set.
type UnknownAudioEncoderError struct {
	Name string
}

func (e *UnknownAudioEncoderError) Error() string {
	return fmt.Sprintf("unrecognized audio encoder %q", e.Name)
}

// UnknownProfileError reports a p= value outside the supported set.
type UnknownProfileError struct {
	Name string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unrecognized profile %q", e.Name)
}

// UnsupportedExtensionError reports an ext= value other than mkv or mp4.
type UnsupportedExtensionError struct {
	Value string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("unsupported extension %q", e.Value)
}

// UnsupportedBitDepthError reports a bd= value other than 8 or 10. The
// offending value is kept as written, so "08" is reported verbatim.
type UnsupportedBitDepthError struct {
	Value string
}

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("unsupported bit depth %q", e.Value)
}

// InvalidNumericError reports a clause value that failed to parse as the
// expected integer type.
type InvalidNumericError struct {
	Clause  string
	Literal string
}

func (e *InvalidNumericError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Clause, e.Literal)
}

// OutOfRangeError reports a clause value outside its allowed range. For
// quantizers the bounds depend on the encoder resolved for the segment.
type OutOfRangeError struct {
	Filter string
	Value  string
	Range  string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("'%s' must be %s, received %s", e.Filter, e.Range, e.Value)
}

func rangeError(filter string, value string, lo, hi int) error {
	return &OutOfRangeError{
		Filter: filter,
		Value:  value,
		Range:  fmt.Sprintf("between %d and %d", lo, hi),
	}
}

// InvalidAudioBitrateError reports an explicit ab= value of zero.
type InvalidAudioBitrateError struct {
	Value int
}

func (e *InvalidAudioBitrateError) Error() string {
	return fmt.Sprintf("'ab' must be greater than 0, got %d", e.Value)
}

// MissingTrackFileError reports an external track alias whose sibling file
// does not exist.
type MissingTrackFileError struct {
	Path string
}

func (e *MissingTrackFileError) Error() string {
	return fmt.Sprintf("track file %s does not exist", e.Path)
}
