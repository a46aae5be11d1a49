package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// runCommand executes the root command with the given arguments and returns
// everything it printed.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig creates a config file whose directories all live under a
// fresh temp root, with preflight off and quiet logging.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	path := filepath.Join(root, "spool.toml")
	content := fmt.Sprintf(`[paths]
staging_dir = %q
output_dir = %q
log_dir = %q

[preflight]
enabled = false

[logging]
level = "error"
`,
		filepath.Join(root, "staging"),
		filepath.Join(root, "output"),
		filepath.Join(root, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
