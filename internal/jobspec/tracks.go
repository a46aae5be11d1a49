package jobspec

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spool/internal/outputs"
)

// parseTrackList consumes key followed by one or more '|'-separated track
// clauses. A malformed clause after a separator ends the list with the
// separator unconsumed, so the parser loop reports the remainder.
func parseTrackList(s, key, source string) ([]outputs.Track, string, error) {
	rest, ok := strings.CutPrefix(s, key)
	if !ok {
		return nil, "", errNoMatch
	}
	track, rest, err := parseTrackClause(rest, source)
	if err != nil {
		return nil, "", err
	}
	tracks := []outputs.Track{track}
	for {
		tail, ok := strings.CutPrefix(rest, "|")
		if !ok {
			break
		}
		track, next, err := parseTrackClause(tail, source)
		if errors.Is(err, errNoMatch) {
			break
		}
		if err != nil {
			return nil, "", err
		}
		tracks = append(tracks, track)
		rest = next
	}
	return tracks, rest, nil
}

// parseTrackClause reads identifier['-'tags]. Tags outside {d,e,f} make
// the clause not match. A dash without tag letters is left unconsumed, the
// way an optional suffix backtracks.
func parseTrackClause(s, source string) (outputs.Track, string, error) {
	id, rest := scanTrackIdent(s)
	if id == "" {
		return outputs.Track{}, "", errNoMatch
	}
	var enabled, forced bool
	if tail, ok := strings.CutPrefix(rest, "-"); ok {
		if tags, next := scanAlpha(tail); tags != "" {
			for _, tag := range tags {
				switch tag {
				case 'd', 'e':
					enabled = true
				case 'f':
					forced = true
				default:
					return outputs.Track{}, "", errNoMatch
				}
			}
			rest = next
		}
	}
	src, err := resolveTrackSource(id, source)
	if err != nil {
		return outputs.Track{}, "", err
	}
	return outputs.Track{Source: src, Enabled: enabled, Forced: forced}, rest, nil
}

// resolveTrackSource maps a track identifier to its source. A non-negative
// integer selects a track inside the source container. Anything else is a
// file-extension alias: the sibling path is the source path with its
// extension replaced by the alias's final dot component, so both "ac3" and
// "1.ac3" against movie.vpy resolve to movie.ac3. The sibling must exist.
func resolveTrackSource(id, source string) (outputs.TrackSource, error) {
	if index, err := strconv.ParseUint(id, 10, 32); err == nil {
		return outputs.VideoTrack{Index: int(index)}, nil
	}
	alias := id
	if i := strings.LastIndexByte(alias, '.'); i >= 0 {
		alias = alias[i+1:]
	}
	sibling := strings.TrimSuffix(source, filepath.Ext(source)) + "." + alias
	if _, err := os.Stat(sibling); err != nil {
		return nil, &MissingTrackFileError{Path: sibling}
	}
	return outputs.ExternalTrack{Path: sibling}, nil
}

// scanTrackIdent reads a track identifier: a leading alphanumeric byte
// followed by alphanumerics or dots.
func scanTrackIdent(s string) (token, rest string) {
	if s == "" || !isAlnum(s[0]) {
		return "", s
	}
	i := 1
	for i < len(s) && (isAlnum(s[i]) || s[i] == '.') {
		i++
	}
	return s[:i], s[i:]
}
