package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nao1215/entityscan/internal/config"
)

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	flag := cmd.Flags().Lookup("listen")
	if flag == nil {
		t.Fatal("expected listen flag")
	}
	if flag.DefValue != config.DefaultListenAddress {
		t.Errorf("listen default = %q, want %q", flag.DefValue, config.DefaultListenAddress)
	}
	for _, name := range []string{"log-file", "token", "api-url", "history-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
}

func TestRunServeCmdRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewServeCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", writeTestConfig(t), "--min-confidence", "2"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrInvalidMinConfidence) {
		t.Fatalf("expected ErrInvalidMinConfidence, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("server must not start, got output %q", out.String())
	}
}
