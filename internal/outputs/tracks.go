package outputs

import (
	"encoding/json"
	"strconv"
)

// Track selects one audio or subtitle track for an output.
type Track struct {
	Source  TrackSource
	Enabled bool
	Forced  bool
}

// TrackSource is either a track index inside the source container or an
// external sibling file on disk.
type TrackSource interface {
	trackSource()
	String() string
}

// VideoTrack references a track by index within the source container. The
// index is not range-checked here; the muxer rejects indexes the source
// does not have.
type VideoTrack struct {
	Index int
}

// ExternalTrack references a standalone track file. The path is verified
// to exist when the track clause is resolved.
type ExternalTrack struct {
	Path string
}

func (VideoTrack) trackSource()    {}
func (ExternalTrack) trackSource() {}

func (s VideoTrack) String() string { return strconv.Itoa(s.Index) }

func (s ExternalTrack) String() string { return s.Path }

// String renders the track in specification syntax, such as "0-e" or
// "movie.ac3-f".
func (t Track) String() string {
	out := t.Source.String()
	if t.Enabled || t.Forced {
		out += "-"
	}
	if t.Enabled {
		out += "e"
	}
	if t.Forced {
		out += "f"
	}
	return out
}

// MarshalJSON flattens the source variant into a discriminated object.
func (t Track) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"enabled": t.Enabled,
		"forced":  t.Forced,
	}
	switch s := t.Source.(type) {
	case VideoTrack:
		m["video_track"] = s.Index
	case ExternalTrack:
		m["external_file"] = s.Path
	}
	return json.Marshal(m)
}
