package encoder

import (
	"fmt"
	"path/filepath"
	"strings"

	"spool/internal/outputs"
)

// OutputPath returns the final container path for one output of a script.
// Artifacts are named <stem>.<encoder ident>.<ext> so discovery can tell
// encode products apart from sources. An empty outputDir keeps the output
// next to the script.
func OutputPath(outputDir, script string, out outputs.Output) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(script)
	}
	name := fmt.Sprintf("%s.%s.%s", stem(script), out.Video.Ident(), out.Extension)
	return filepath.Join(dir, name)
}

// LosslessPath returns the lossless intermediate location for a script. It
// sits next to the script so later runs against the same source reuse it.
func LosslessPath(script string) string {
	return strings.TrimSuffix(script, filepath.Ext(script)) + ".lossless.mkv"
}

// VideoWorkPath returns the pre-mux encoded video location inside workDir.
func VideoWorkPath(workDir, script string, out outputs.Output) string {
	return filepath.Join(workDir, fmt.Sprintf("%s.%s.video.mkv", stem(script), out.Video.Ident()))
}

// AudioWorkPath returns the encoded audio intermediate for one track.
func AudioWorkPath(workDir, script string, out outputs.Output, track int) string {
	return filepath.Join(workDir, fmt.Sprintf("%s.%s.a%d.mka", stem(script), out.Video.Ident(), track))
}

// SubtitleWorkPath returns the extracted subtitle intermediate for one track.
func SubtitleWorkPath(workDir, script string, out outputs.Output, track int) string {
	return filepath.Join(workDir, fmt.Sprintf("%s.%s.s%d.mks", stem(script), out.Video.Ident(), track))
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
