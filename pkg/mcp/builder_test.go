package mcp

import (
	"context"
	"testing"

	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

func TestBuilderAccumulatesCommandLine(t *testing.T) {
	b := NewClientBuilder("uvx").
		Arg("notes-simple").
		Args("--flag", "value").
		Dir("/tmp").
		Env("API_KEY", "secret").
		Implementation("my-host", "2.0.0")

	if b.command != "uvx" {
		t.Errorf("command = %q", b.command)
	}
	want := []string{"notes-simple", "--flag", "value"}
	if len(b.args) != len(want) {
		t.Fatalf("args = %v, want %v", b.args, want)
	}
	for i := range want {
		if b.args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, b.args[i], want[i])
		}
	}
	if b.dir != "/tmp" {
		t.Errorf("dir = %q", b.dir)
	}
	if b.env["API_KEY"] != "secret" {
		t.Errorf("env = %v", b.env)
	}
	if b.impl.Name != "my-host" || b.impl.Version != "2.0.0" {
		t.Errorf("impl = %+v", b.impl)
	}
}

func TestStartNonexistentCommand(t *testing.T) {
	_, err := NewClientBuilder("definitely-not-a-real-binary").
		Start(context.Background())
	if err == nil {
		t.Fatal("Start() succeeded for a nonexistent command")
	}
	if !mcperrs.IsTransport(err) {
		t.Errorf("Start() error = %v, want a transport error", err)
	}
}
