package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"spool/internal/config"
	"spool/internal/history"
	"spool/internal/logging"
	"spool/internal/services"
	"spool/internal/testsupport"
)

type completedCall struct {
	processed int
	failed    int
}

type fakeNotifier struct {
	completed []completedCall
	errors    []string
}

func (f *fakeNotifier) NotifyRunCompleted(_ context.Context, processed, failed int, _ time.Duration) error {
	f.completed = append(f.completed, completedCall{processed: processed, failed: failed})
	return nil
}

func (f *fakeNotifier) NotifyError(_ context.Context, _ error, context string) error {
	f.errors = append(f.errors, context)
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

func newTestRunner(t *testing.T, cfg *config.Config) (*Runner, *history.Store, *fakeNotifier) {
	t.Helper()
	store := testsupport.MustOpenHistory(t, cfg)
	notifier := &fakeNotifier{}
	return NewRunnerWithNotifier(cfg, store, logging.NewNop(), notifier), store, notifier
}

// Tool stubs for end to end runs. ffmpeg and av1an create their final
// argument, mkvmerge writes its -o target, vspipe prints a fixed 240 frame
// clip info for -i, and ffprobe answers 240 frames (or 2 channels) for
// files that exist and fails for files that do not.
const (
	vspipeStub = `#!/bin/sh
if [ "$1" = "-i" ]; then
cat <<'EOF'
Width: 640
Height: 480
Frames: 240
FPS: 24000/1001 (23.976 fps)
Format Name: YUV420P8
Color Family: YUV
Bits: 8
EOF
fi
exit 0
`

	touchLastArgStub = `#!/bin/sh
for last; do :; done
: > "$last"
exit 0
`

	mkvmergeStub = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
	if [ "$1" = "-o" ]; then
		out="$2"
		shift
	fi
	shift
done
if [ -n "$out" ]; then
	printf 'mkv' > "$out"
fi
exit 0
`

	ffprobeStub = `#!/bin/sh
for last; do :; done
[ -e "$last" ] || exit 1
case "$*" in
*stream=channels*) echo 2 ;;
*) echo 240 ;;
esac
exit 0
`
)

func writeStub(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

func stubToolchain(t *testing.T) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "bin")
	writeStub(t, dir, "vspipe", vspipeStub)
	writeStub(t, dir, "ffmpeg", touchLastArgStub)
	writeStub(t, dir, "av1an", touchLastArgStub)
	writeStub(t, dir, "mkvmerge", mkvmergeStub)
	writeStub(t, dir, "ffprobe", ffprobeStub)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// writeSourcedScript writes a script whose source= argument points at a
// real sibling media file, the shape SourceFile expects.
func writeSourcedScript(t *testing.T, dir, name string) (script, source string) {
	t.Helper()
	base := strings.TrimSuffix(name, filepath.Ext(name))
	source = filepath.Join(dir, base+".mkv")
	testsupport.WriteFile(t, source, 2048)
	script = filepath.Join(dir, name)
	body := fmt.Sprintf("import vapoursynth as vs\ncore = vs.core\nclip = core.lsmas.LWLibavSource(source=%q)\nclip.set_output()\n", source)
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return script, source
}

func TestRunReturnsErrorWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	held := flock.New(filepath.Join(cfg.Paths.LogDir, "spool.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock = %v, %v", locked, err)
	}
	defer held.Unlock()

	runner, _, _ := newTestRunner(t, cfg)
	_, err = runner.Run(context.Background(), t.TempDir(), Options{})
	if err == nil {
		t.Fatal("Run with a held lock should fail")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("lock error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "already active") {
		t.Errorf("lock error = %q, want mention of the active run", err)
	}
}

func TestRunWarnsWhenNoScriptsFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner, _, notifier := newTestRunner(t, cfg)

	summary, err := runner.Run(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 0 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want all counts zero", summary)
	}
	if summary.RunID == "" {
		t.Error("summary missing run id")
	}
	if len(notifier.completed) != 0 {
		t.Errorf("completion notifications = %d, want 0", len(notifier.completed))
	}
}

func TestRunRecordsInvalidSpecAsSkipped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner, store, notifier := newTestRunner(t, cfg)
	dir := t.TempDir()
	script := testsupport.WriteScript(t, dir, "episode01.vpy")

	summary, err := runner.Run(context.Background(), dir, Options{Spec: "enc=notreal"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Processed != 0 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want one skipped", summary)
	}

	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Status != history.StatusSkipped {
		t.Errorf("job status = %s, want %s", jobs[0].Status, history.StatusSkipped)
	}
	if jobs[0].Source != script {
		t.Errorf("job source = %q, want %q", jobs[0].Source, script)
	}
	if len(notifier.errors) != 1 {
		t.Errorf("error notifications = %d, want 1", len(notifier.errors))
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	runner, store, notifier := newTestRunner(t, cfg)
	dir := t.TempDir()
	testsupport.WriteScript(t, dir, "episode01.vpy")
	testsupport.WriteScript(t, dir, "episode02.vpy")

	// The default stubs print nothing, so every probe fails.
	summary, err := runner.Run(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 2 || summary.Processed != 0 {
		t.Errorf("summary = %+v, want two failed", summary)
	}

	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	for _, job := range jobs {
		if job.Status != history.StatusFailed {
			t.Errorf("job %d status = %s, want %s", job.ID, job.Status, history.StatusFailed)
		}
		if job.ErrorMsg == "" {
			t.Errorf("job %d missing error message", job.ID)
		}
	}

	if len(notifier.errors) != 2 {
		t.Errorf("error notifications = %d, want 2", len(notifier.errors))
	}
	if len(notifier.completed) != 1 {
		t.Fatalf("completion notifications = %d, want 1", len(notifier.completed))
	}
	if got := notifier.completed[0]; got.processed != 0 || got.failed != 2 {
		t.Errorf("completion notification = %+v, want 0 processed, 2 failed", got)
	}
}

func TestRunFailFastStopsBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Workflow.FailFast = true
	runner, store, _ := newTestRunner(t, cfg)
	dir := t.TempDir()
	first := testsupport.WriteScript(t, dir, "episode01.vpy")
	testsupport.WriteScript(t, dir, "episode02.vpy")

	summary, err := runner.Run(context.Background(), dir, Options{})
	if err == nil {
		t.Fatal("fail-fast run should report the first failure")
	}
	if summary == nil || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want one failed", summary)
	}

	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Source != first {
		t.Errorf("job source = %q, want %q", jobs[0].Source, first)
	}
}

func TestRunEncodesScriptEndToEnd(t *testing.T) {
	stubToolchain(t)
	cfg := testsupport.NewConfig(t)
	runner, store, notifier := newTestRunner(t, cfg)
	dir := t.TempDir()
	writeSourcedScript(t, dir, "episode01.vpy")

	summary, err := runner.Run(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v, want one processed", summary)
	}

	final := filepath.Join(dir, "episode01.x264-q18.mkv")
	if _, err := os.Stat(final); err != nil {
		t.Errorf("final output missing: %v", err)
	}

	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	job := jobs[0]
	if job.Status != history.StatusCompleted {
		t.Errorf("job status = %s, want %s (error: %s)", job.Status, history.StatusCompleted, job.ErrorMsg)
	}
	if job.OutputPath != final {
		t.Errorf("job output = %q, want %q", job.OutputPath, final)
	}
	if job.Encoder != "x264" {
		t.Errorf("job encoder = %q, want x264", job.Encoder)
	}
	if job.SourceBytes == 0 {
		t.Error("job source bytes not recorded")
	}
	if job.OutputBytes == 0 {
		t.Error("job output bytes not recorded")
	}

	if _, err := os.Stat(filepath.Join(dir, "episode01.lossless.mkv")); !os.IsNotExist(err) {
		t.Errorf("lossless intermediate should be removed after the run, stat: %v", err)
	}
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("staging dir still holds %d entries after the run", len(entries))
	}

	if len(notifier.completed) != 1 {
		t.Fatalf("completion notifications = %d, want 1", len(notifier.completed))
	}
	if got := notifier.completed[0]; got.processed != 1 || got.failed != 0 {
		t.Errorf("completion notification = %+v, want 1 processed, 0 failed", got)
	}
}

func TestRunKeepsLosslessWhenConfigured(t *testing.T) {
	stubToolchain(t)
	cfg := testsupport.NewConfig(t)
	cfg.Encoding.KeepLossless = true
	runner, _, _ := newTestRunner(t, cfg)
	dir := t.TempDir()
	writeSourcedScript(t, dir, "episode01.vpy")

	summary, err := runner.Run(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want one processed", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, "episode01.lossless.mkv")); err != nil {
		t.Errorf("lossless intermediate missing: %v", err)
	}
}

func TestRunReusesExistingFinalOutput(t *testing.T) {
	stubToolchain(t)
	cfg := testsupport.NewConfig(t)
	runner, store, _ := newTestRunner(t, cfg)
	dir := t.TempDir()
	writeSourcedScript(t, dir, "episode01.vpy")

	if _, err := runner.Run(context.Background(), dir, Options{}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	summary, err := runner.Run(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want one processed", summary)
	}
	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("second run recorded %d jobs, want 0 (output reused)", len(jobs))
	}
	if _, err := os.Stat(filepath.Join(dir, "episode01.lossless.mkv")); !os.IsNotExist(err) {
		t.Errorf("second run should not recreate the lossless intermediate, stat: %v", err)
	}
}

func TestRunCopyOutputSkipsLossless(t *testing.T) {
	stubToolchain(t)
	cfg := testsupport.NewConfig(t)
	runner, store, _ := newTestRunner(t, cfg)
	dir := t.TempDir()
	writeSourcedScript(t, dir, "episode01.vpy")

	summary, err := runner.Run(context.Background(), dir, Options{Spec: "enc=copy"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want one processed", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, "episode01.copy.mkv")); err != nil {
		t.Errorf("copy output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "episode01.lossless.mkv")); !os.IsNotExist(err) {
		t.Errorf("copy output should not produce a lossless intermediate, stat: %v", err)
	}

	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Encoder != "copy" {
		t.Errorf("job encoder = %q, want copy", jobs[0].Encoder)
	}
}

func TestRunLosslessOnlyStopsAfterIntermediate(t *testing.T) {
	stubToolchain(t)
	cfg := testsupport.NewConfig(t)
	runner, store, _ := newTestRunner(t, cfg)
	dir := t.TempDir()
	writeSourcedScript(t, dir, "episode01.vpy")

	summary, err := runner.Run(context.Background(), dir, Options{LosslessOnly: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want one processed", summary)
	}

	lossless := filepath.Join(dir, "episode01.lossless.mkv")
	if _, err := os.Stat(lossless); err != nil {
		t.Errorf("lossless intermediate missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "episode01.x264-q18.mkv")); !os.IsNotExist(err) {
		t.Errorf("lossless-only run should not encode outputs, stat: %v", err)
	}

	jobs, err := store.JobsByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("JobsByRun: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Encoder != "lossless" {
		t.Errorf("job encoder = %q, want lossless", jobs[0].Encoder)
	}
	if jobs[0].OutputPath != lossless {
		t.Errorf("job output = %q, want %q", jobs[0].OutputPath, lossless)
	}
	if jobs[0].Status != history.StatusCompleted {
		t.Errorf("job status = %s, want %s", jobs[0].Status, history.StatusCompleted)
	}
}
