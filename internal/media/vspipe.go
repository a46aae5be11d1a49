package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// commandContext is swapped out by tests that fake external tools.
var commandContext = exec.CommandContext

// ProbeScript runs `vspipe -i` against a VapourSynth script and parses the
// clip information it prints.
func ProbeScript(ctx context.Context, binary, script string) (VideoDimensions, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "vspipe"
	}

	cmd := commandContext(ctx, binary, "-i", script, "-")
	output, err := cmd.Output()
	if err != nil {
		return VideoDimensions{}, fmt.Errorf("vspipe probe: %w%s", err, stderrSuffix(err))
	}

	dims, err := parseScriptInfo(string(output))
	if err != nil {
		return VideoDimensions{}, fmt.Errorf("vspipe probe %s: %w", filepath.Base(script), err)
	}
	return dims, nil
}

// parseScriptInfo decodes the key-value block vspipe -i prints:
//
//	Width: 1280
//	Height: 720
//	Frames: 17982
//	FPS: 24000/1001 (23.976 fps)
//	Format Name: YUV420P8
//	Bits: 8
//
// plus further lines this parser does not care about.
func parseScriptInfo(output string) (VideoDimensions, error) {
	var (
		dims VideoDimensions
		seen = map[string]bool{}
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "Width":
			dims.Width, err = strconv.Atoi(value)
		case "Height":
			dims.Height, err = strconv.Atoi(value)
		case "Frames":
			dims.Frames, err = strconv.Atoi(value)
		case "FPS":
			dims.FPSNum, dims.FPSDen, err = parseFPS(value)
		case "Format Name":
			format, known := ParsePixelFormat(value)
			if !known {
				return VideoDimensions{}, fmt.Errorf("unsupported pixel format %q", value)
			}
			dims.PixelFormat = format
		case "Bits":
			dims.BitDepth, err = strconv.Atoi(value)
		default:
			continue
		}
		if err != nil {
			return VideoDimensions{}, fmt.Errorf("parse %s %q: %w", key, value, err)
		}
		seen[key] = true
	}

	for _, key := range []string{"Width", "Height", "Frames", "FPS", "Format Name", "Bits"} {
		if !seen[key] {
			return VideoDimensions{}, fmt.Errorf("script info missing %s", key)
		}
	}

	dims.ColorSpace = ColorSpaceForHeight(dims.Height)
	return dims, nil
}

// parseFPS splits a rate such as "24000/1001 (23.976 fps)" into numerator
// and denominator. A bare integer is treated as a whole frame rate.
func parseFPS(value string) (int, int, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, 0, errors.New("empty frame rate")
	}

	num, den, ok := strings.Cut(fields[0], "/")
	if !ok {
		den = "1"
	}
	numerator, err := strconv.Atoi(num)
	if err != nil {
		return 0, 0, err
	}
	denominator, err := strconv.Atoi(den)
	if err != nil {
		return 0, 0, err
	}
	if denominator == 0 {
		return 0, 0, errors.New("zero frame rate denominator")
	}
	return numerator, denominator, nil
}

// SourceFile extracts the media file a VapourSynth script reads by locating
// the first source="..." argument in the script text. Relative paths
// resolve against the script's directory.
func SourceFile(script string) (string, error) {
	content, err := os.ReadFile(script)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}

	_, after, ok := strings.Cut(string(content), "source=")
	if !ok {
		return "", fmt.Errorf("no source= argument in %s", filepath.Base(script))
	}
	open := strings.IndexByte(after, '"')
	if open < 0 {
		return "", fmt.Errorf("no quoted path after source= in %s", filepath.Base(script))
	}
	rest := after[open+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", fmt.Errorf("unterminated source path in %s", filepath.Base(script))
	}

	path := rest[:end]
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(script), path)
	}
	return path, nil
}

// stderrSuffix renders captured stderr for error messages, empty when the
// failure carried none.
func stderrSuffix(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail := strings.TrimSpace(string(exitErr.Stderr)); detail != "" {
			return ": " + detail
		}
	}
	return ""
}
