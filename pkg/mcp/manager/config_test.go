package manager_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/manager"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"mcpServers": {
			"notes": {
				"command": "uvx",
				"args": ["notes-simple"],
				"env": {"NOTES_DIR": "/tmp/notes"}
			},
			"files": {"command": "./files-server"}
		}
	}`)

	cfg, err := manager.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.MCPServers) != 2 {
		t.Fatalf("got %d servers, want 2", len(cfg.MCPServers))
	}
	notes := cfg.MCPServers["notes"]
	if notes.Command != "uvx" {
		t.Errorf("notes.Command = %q", notes.Command)
	}
	if len(notes.Args) != 1 || notes.Args[0] != "notes-simple" {
		t.Errorf("notes.Args = %v", notes.Args)
	}
	if notes.Env["NOTES_DIR"] != "/tmp/notes" {
		t.Errorf("notes.Env = %v", notes.Env)
	}
}

func TestLoadConfigAllowsComments(t *testing.T) {
	path := writeConfig(t, `{
		// local note-taking server
		"mcpServers": {
			"notes": {"command": "uvx", "args": ["notes-simple"]},
		}
	}`)

	cfg, err := manager.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v for commented config", err)
	}
	if _, ok := cfg.MCPServers["notes"]; !ok {
		t.Error("notes server missing")
	}
}

func TestLoadConfigRejectsMissingCommand(t *testing.T) {
	path := writeConfig(t, `{"mcpServers": {"broken": {"args": ["x"]}}}`)

	if _, err := manager.LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() accepted a server without a command")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := manager.LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("LoadConfig() succeeded for a missing file")
	}
}
