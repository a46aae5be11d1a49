package encoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"spool/internal/logging"
)

var commandContext = exec.CommandContext

// Command names one external tool invocation.
type Command struct {
	Binary string
	Args   []string
}

// Runner executes the external encode tools. Tool output streams into the
// debug log line by line, and the last lines ride along in errors so a
// failure is diagnosable without rerunning.
type Runner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner logging through logger. A nil logger discards
// tool output.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logger}
}

// Run executes one command, with stderr folded into stdout.
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	proc := commandContext(ctx, cmd.Binary, cmd.Args...)
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	proc.Stderr = proc.Stdout
	if err := proc.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Binary, err)
	}

	tool := filepath.Base(cmd.Binary)
	tail := newTail(20)
	r.scan(stdout, tool, tail)

	if err := proc.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", tool, ctx.Err())
		}
		return fmt.Errorf("%s: %w%s", tool, err, tail.suffix())
	}
	return nil
}

// RunPipe streams the producer's stdout into the consumer's stdin, the
// vspipe into ffmpeg arrangement the lossless encode uses. The consumer's
// output is logged; the producer's stderr is kept for its error.
func (r *Runner) RunPipe(ctx context.Context, producer, consumer Command) error {
	prod := commandContext(ctx, producer.Binary, producer.Args...)
	cons := commandContext(ctx, consumer.Binary, consumer.Args...)

	pipe, err := prod.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	prodTail := newTail(20)
	prod.Stderr = prodTail
	cons.Stdin = pipe

	consOut, err := cons.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cons.Stderr = cons.Stdout

	if err := prod.Start(); err != nil {
		return fmt.Errorf("start %s: %w", producer.Binary, err)
	}
	if err := cons.Start(); err != nil {
		_ = prod.Process.Kill()
		_ = prod.Wait()
		return fmt.Errorf("start %s: %w", consumer.Binary, err)
	}

	consTool := filepath.Base(consumer.Binary)
	consTail := newTail(20)
	r.scan(consOut, consTool, consTail)

	consErr := cons.Wait()
	prodErr := prod.Wait()

	if consErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", consTool, ctx.Err())
		}
		return fmt.Errorf("%s: %w%s", consTool, consErr, consTail.suffix())
	}
	if prodErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", filepath.Base(producer.Binary), ctx.Err())
		}
		return fmt.Errorf("%s: %w%s", filepath.Base(producer.Binary), prodErr, prodTail.suffix())
	}
	return nil
}

func (r *Runner) scan(out io.Reader, tool string, tail *tailBuffer) {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		tail.add(line)
		r.logger.Debug(line, logging.String("tool", tool))
	}
}

// tailBuffer keeps the last n lines written to it.
type tailBuffer struct {
	lines []string
	max   int
	rest  string
}

func newTail(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

// Write lets a tailBuffer capture a process stderr directly.
func (t *tailBuffer) Write(p []byte) (int, error) {
	t.rest += string(p)
	for {
		idx := strings.IndexAny(t.rest, "\r\n")
		if idx < 0 {
			break
		}
		if line := strings.TrimSpace(t.rest[:idx]); line != "" {
			t.add(line)
		}
		t.rest = t.rest[idx+1:]
	}
	return len(p), nil
}

func (t *tailBuffer) suffix() string {
	lines := t.lines
	if rest := strings.TrimSpace(t.rest); rest != "" {
		lines = append(append([]string{}, lines...), rest)
	}
	if len(lines) == 0 {
		return ""
	}
	return ": " + strings.Join(lines, " | ")
}
