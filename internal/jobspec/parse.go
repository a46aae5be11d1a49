package jobspec

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"spool/internal/outputs"
)

// errNoMatch signals that a production does not apply at the current
// position and the next one should be tried. Any other production error is
// fatal for the whole segment.
var errNoMatch = errors.New("no production matched")

// productions lists the clause parsers in priority order; the first match
// wins. Order matters where keys share prefixes.
var productions = []func(s, source string) (Filter, string, error){
	parseVideoEncoder,
	parseQuantizer,
	parseSpeed,
	parseProfile,
	parseGrain,
	parseCompat,
	parseExtension,
	parseBitDepth,
	parseResolution,
	parseAudioEncoder,
	parseAudioBitrate,
	parseAudioTracks,
	parseAudioNorm,
	parseSubtitleTracks,
}

// ParseSegment tokenizes one specification segment. Track clauses resolve
// external aliases against source, the file the specification applies to.
func ParseSegment(segment, source string) ([]Filter, error) {
	var filters []Filter
	input := strings.TrimLeftFunc(segment, unicode.IsSpace)
	for input != "" {
		filter, rest, err := nextFilter(input, source)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
		rest = strings.TrimRightFunc(rest, unicode.IsSpace)
		rest = strings.TrimLeft(rest, ",")
		input = strings.TrimLeftFunc(rest, unicode.IsSpace)
	}
	return filters, nil
}

func nextFilter(s, source string) (Filter, string, error) {
	for _, production := range productions {
		filter, rest, err := production(s, source)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return filter, rest, nil
	}
	return nil, "", &UnrecognizedFilterError{Remainder: s}
}

func parseVideoEncoder(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "enc=")
	if !ok {
		return nil, "", errNoMatch
	}
	name, rest := scanAlnum(rest)
	if name == "" {
		return nil, "", errNoMatch
	}
	if !slices.Contains(outputs.SupportedVideoEncoders(), name) {
		return nil, "", &UnknownEncoderError{Name: name}
	}
	return VideoEncoderFilter{Name: name}, rest, nil
}

func parseQuantizer(s, _ string) (Filter, string, error) {
	clause, rest, ok := cutKey(s, "q=", "qp=", "crf=")
	if !ok {
		return nil, "", errNoMatch
	}
	neg := strings.HasPrefix(rest, "-")
	digits, tail := scanDigits(strings.TrimPrefix(rest, "-"))
	if digits == "" {
		return nil, "", errNoMatch
	}
	lit := digits
	if neg {
		lit = "-" + lit
	}
	value, err := strconv.ParseInt(lit, 10, 16)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: clause, Literal: lit}
	}
	return QuantizerFilter{Value: int(value)}, tail, nil
}

func parseSpeed(s, _ string) (Filter, string, error) {
	clause, rest, ok := cutKey(s, "s=", "speed=")
	if !ok {
		return nil, "", errNoMatch
	}
	digits, tail := scanDigits(rest)
	if digits == "" {
		return nil, "", errNoMatch
	}
	value, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: clause, Literal: digits}
	}
	return SpeedFilter{Value: int(value)}, tail, nil
}

func parseProfile(s, _ string) (Filter, string, error) {
	_, rest, ok := cutKey(s, "p=", "profile=")
	if !ok {
		return nil, "", errNoMatch
	}
	name, tail := scanAlpha(rest)
	if name == "" {
		return nil, "", errNoMatch
	}
	profile, ok := outputs.ParseProfile(name)
	if !ok {
		return nil, "", &UnknownProfileError{Name: name}
	}
	return ProfileFilter{Profile: profile}, tail, nil
}

func parseGrain(s, _ string) (Filter, string, error) {
	clause, rest, ok := cutKey(s, "g=", "grain=")
	if !ok {
		return nil, "", errNoMatch
	}
	digits, tail := scanDigits(rest)
	if digits == "" {
		return nil, "", errNoMatch
	}
	value, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: clause, Literal: digits}
	}
	return GrainFilter{Value: int(value)}, tail, nil
}

func parseCompat(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "compat=")
	if !ok {
		return nil, "", errNoMatch
	}
	digits, tail := scanDigits(rest)
	if digits == "" {
		return nil, "", errNoMatch
	}
	value, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: "compat", Literal: digits}
	}
	return CompatFilter{Enabled: value > 0}, tail, nil
}

func parseExtension(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "ext=")
	if !ok {
		return nil, "", errNoMatch
	}
	ext, tail := scanAlnum(rest)
	if ext == "" {
		return nil, "", errNoMatch
	}
	if ext != "mkv" && ext != "mp4" {
		return nil, "", &UnsupportedExtensionError{Value: ext}
	}
	return ExtensionFilter{Extension: ext}, tail, nil
}

func parseBitDepth(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "bd=")
	if !ok {
		return nil, "", errNoMatch
	}
	digits, tail := scanDigits(rest)
	if digits == "" {
		return nil, "", errNoMatch
	}
	// Compared as written: "08" is not an accepted spelling of 8.
	switch digits {
	case "8":
		return BitDepthFilter{Depth: 8}, tail, nil
	case "10":
		return BitDepthFilter{Depth: 10}, tail, nil
	}
	return nil, "", &UnsupportedBitDepthError{Value: digits}
}

func parseResolution(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "res=")
	if !ok {
		return nil, "", errNoMatch
	}
	wDigits, rest := scanDigits(rest)
	if wDigits == "" {
		return nil, "", errNoMatch
	}
	rest, ok = strings.CutPrefix(rest, "x")
	if !ok {
		return nil, "", errNoMatch
	}
	hDigits, tail := scanDigits(rest)
	if hDigits == "" {
		return nil, "", errNoMatch
	}
	width, err := strconv.ParseUint(wDigits, 10, 32)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: "res", Literal: wDigits}
	}
	height, err := strconv.ParseUint(hDigits, 10, 32)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: "res", Literal: hDigits}
	}
	size := fmt.Sprintf("%dx%d", width, height)
	if width%2 != 0 || height%2 != 0 {
		return nil, "", &OutOfRangeError{Filter: "res", Value: size, Range: "mod 2"}
	}
	if width < 64 || height < 64 {
		return nil, "", &OutOfRangeError{Filter: "res", Value: size, Range: "at least 64x64"}
	}
	return ResolutionFilter{Width: int(width), Height: int(height)}, tail, nil
}

func parseAudioEncoder(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "aenc=")
	if !ok {
		return nil, "", errNoMatch
	}
	name, tail := scanAlnum(rest)
	if name == "" {
		return nil, "", errNoMatch
	}
	codec, ok := outputs.ParseAudioCodec(name)
	if !ok {
		return nil, "", &UnknownAudioEncoderError{Name: name}
	}
	return AudioEncoderFilter{Codec: codec}, tail, nil
}

func parseAudioBitrate(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "ab=")
	if !ok {
		return nil, "", errNoMatch
	}
	digits, tail := scanDigits(rest)
	if digits == "" {
		return nil, "", errNoMatch
	}
	value, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return nil, "", &InvalidNumericError{Clause: "ab", Literal: digits}
	}
	return AudioBitrateFilter{Kbps: int(value)}, tail, nil
}

func parseAudioTracks(s, source string) (Filter, string, error) {
	tracks, rest, err := parseTrackList(s, "at=", source)
	if err != nil {
		return nil, "", err
	}
	return AudioTracksFilter{Tracks: tracks}, rest, nil
}

func parseAudioNorm(s, _ string) (Filter, string, error) {
	rest, ok := strings.CutPrefix(s, "an=1")
	if !ok {
		return nil, "", errNoMatch
	}
	return AudioNormalizeFilter{}, rest, nil
}

func parseSubtitleTracks(s, source string) (Filter, string, error) {
	tracks, rest, err := parseTrackList(s, "st=", source)
	if err != nil {
		return nil, "", err
	}
	return SubtitleTracksFilter{Tracks: tracks}, rest, nil
}

// cutKey strips the first matching key prefix and reports its name with
// the trailing '=' removed.
func cutKey(s string, keys ...string) (name, rest string, ok bool) {
	for _, key := range keys {
		if rest, found := strings.CutPrefix(s, key); found {
			return strings.TrimSuffix(key, "="), rest, true
		}
	}
	return "", s, false
}

func scanAlnum(s string) (token, rest string) {
	i := 0
	for i < len(s) && isAlnum(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func scanAlpha(s string) (token, rest string) {
	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func scanDigits(s string) (token, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
