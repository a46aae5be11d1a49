package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// renderCheckLine formats one validation result:
//
//	[ OK ] Staging directory
//	[FAIL] Staging free space (12 GiB free, need 50 GiB)
func renderCheckLine(name string, passed bool, detail string, colorize bool) string {
	verdict := "[ OK ]"
	if !passed {
		verdict = "[FAIL]"
	}
	if colorize {
		color := ansiGreen
		if !passed {
			color = ansiRed
		}
		verdict = color + verdict + ansiReset
	}
	line := fmt.Sprintf("  %s %s", verdict, name)
	if detail != "" && !passed {
		line += " (" + detail + ")"
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
