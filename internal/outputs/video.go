package outputs

import (
	"fmt"
	"strings"
)

// Profile selects the tuning preset shared by every video encoder.
type Profile string

// Supported tuning profiles.
const (
	ProfileFilm          Profile = "film"
	ProfileGrain         Profile = "grain"
	ProfileAnime         Profile = "anime"
	ProfileAnimeDetailed Profile = "animedetailed"
	ProfileAnimeGrain    Profile = "animegrain"
	ProfileFast          Profile = "fast"
)

// ParseProfile maps a profile name from a specification string to its
// Profile value.
func ParseProfile(name string) (Profile, bool) {
	switch strings.ToLower(name) {
	case "film":
		return ProfileFilm, true
	case "grain":
		return ProfileGrain, true
	case "anime":
		return ProfileAnime, true
	case "animedetailed":
		return ProfileAnimeDetailed, true
	case "animegrain":
		return ProfileAnimeGrain, true
	case "fast":
		return ProfileFast, true
	}
	return "", false
}

// IsAnime reports whether the profile is one of the animation tunings.
func (p Profile) IsAnime() bool {
	return p == ProfileAnime || p == ProfileAnimeDetailed || p == ProfileAnimeGrain
}

// VideoSettings is the encoder-specific portion of an Output. Exactly one
// implementation exists per supported encoder, and code that varies per
// encoder type-switches over them.
type VideoSettings interface {
	// EncoderName returns the name used in specification strings.
	EncoderName() string
	// Av1anName returns the encoder name av1an expects after -e.
	Av1anName() string
	// Ident returns the short identity used to name encode artifacts,
	// for example "x264-q18" or "copy".
	Ident() string

	videoSettings()
}

// CopySettings streams the source video through without re-encoding.
type CopySettings struct{}

// AomSettings configures the aomenc AV1 encoder.
type AomSettings struct {
	CRF     int
	Speed   int
	Profile Profile
	Grain   int
	Compat  bool
}

// Rav1eSettings configures the rav1e AV1 encoder.
type Rav1eSettings struct {
	CRF     int
	Speed   int
	Profile Profile
	Grain   int
}

// SvtAv1Settings configures the SVT-AV1 encoder.
type SvtAv1Settings struct {
	CRF     int
	Speed   int
	Profile Profile
	Grain   int
}

// X264Settings configures the x264 H.264 encoder.
type X264Settings struct {
	CRF     int
	Profile Profile
	Compat  bool
}

// X265Settings configures the x265 H.265 encoder.
type X265Settings struct {
	CRF     int
	Profile Profile
	Compat  bool
}

func (*CopySettings) EncoderName() string   { return "copy" }
func (*AomSettings) EncoderName() string    { return "aom" }
func (*Rav1eSettings) EncoderName() string  { return "rav1e" }
func (*SvtAv1Settings) EncoderName() string { return "svt" }
func (*X264Settings) EncoderName() string   { return "x264" }
func (*X265Settings) EncoderName() string   { return "x265" }

func (*CopySettings) Av1anName() string   { return "copy" }
func (*AomSettings) Av1anName() string    { return "aom" }
func (*Rav1eSettings) Av1anName() string  { return "rav1e" }
func (*SvtAv1Settings) Av1anName() string { return "svt-av1" }
func (*X264Settings) Av1anName() string   { return "x264" }
func (*X265Settings) Av1anName() string   { return "x265" }

func (*CopySettings) Ident() string { return "copy" }

func (s *AomSettings) Ident() string { return fmt.Sprintf("aom-q%d-s%d", s.CRF, s.Speed) }

func (s *Rav1eSettings) Ident() string { return fmt.Sprintf("rav1e-q%d-s%d", s.CRF, s.Speed) }

func (s *SvtAv1Settings) Ident() string { return fmt.Sprintf("svt-q%d-s%d", s.CRF, s.Speed) }

func (s *X264Settings) Ident() string { return fmt.Sprintf("x264-q%d", s.CRF) }

func (s *X265Settings) Ident() string { return fmt.Sprintf("x265-q%d", s.CRF) }

func (*CopySettings) videoSettings()   {}
func (*AomSettings) videoSettings()    {}
func (*Rav1eSettings) videoSettings()  {}
func (*SvtAv1Settings) videoSettings() {}
func (*X264Settings) videoSettings()   {}
func (*X265Settings) videoSettings()   {}

// SupportedVideoEncoders lists the encoder names accepted in enc= clauses.
func SupportedVideoEncoders() []string {
	return []string{"aom", "rav1e", "svt", "x264", "x265", "copy"}
}

// DefaultVideoSettings returns the default-initialized settings for the
// named encoder, or false when the name is not a supported encoder.
func DefaultVideoSettings(name string) (VideoSettings, bool) {
	switch name {
	case "copy":
		return &CopySettings{}, true
	case "aom":
		return &AomSettings{CRF: 16, Speed: 4, Profile: ProfileFilm}, true
	case "rav1e":
		return &Rav1eSettings{CRF: 40, Speed: 5, Profile: ProfileFilm}, true
	case "svt":
		return &SvtAv1Settings{CRF: 16, Speed: 4, Profile: ProfileFilm}, true
	case "x264":
		return &X264Settings{CRF: 18, Profile: ProfileFilm}, true
	case "x265":
		return &X265Settings{CRF: 18, Profile: ProfileFilm}, true
	}
	return nil, false
}
