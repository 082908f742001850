package subcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckCommand_ValidYAML(t *testing.T) {
	yaml := `
device:
  base_url: http://192.168.4.1

policy:
  safe_rocket_states:
    start-filling: [IDLING_CLOSED]
    launch: [IDLING_CLOSED]
`
	path := writeTempYaml(t, yaml)

	cmd := NewCheckCommand()
	cmd.SetArgs([]string{"--config", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("check command failed: %v", err)
	}
}

func TestCheckCommand_InvalidPath(t *testing.T) {
	cmd := NewCheckCommand()
	cmd.SetArgs([]string{"--config", "/nonexistent/path.yml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestCheckCommand_InvalidYAML(t *testing.T) {
	path := writeTempYaml(t, "invalid: yaml: content:")

	cmd := NewCheckCommand()
	cmd.SetArgs([]string{"--config", path})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestCheckCommand_UnknownState(t *testing.T) {
	yaml := `
policy:
  safe_rocket_states:
    launch: [IDLING_CLOSED, HOVERING]
`
	path := writeTempYaml(t, yaml)

	cmd := NewCheckCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--config", path})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown rocket state")
	}
	if !strings.Contains(out.String(), "HOVERING") {
		t.Errorf("expected report to name the state, got:\n%s", out.String())
	}
}

func TestCheckCommand_MissingFlag(t *testing.T) {
	cmd := NewCheckCommand()
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing --config")
	}
}

func writeTempYaml(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
