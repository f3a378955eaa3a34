package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("output does not mention target path: %q", output)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	for _, section := range []string{"[paths]", "[audio_mix]", "[render]", "[reddit]", "[llm]", "[screenshots]", "[tts]"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("sample config missing %s section", section)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}

	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "# existing") {
		t.Fatal("existing file not replaced")
	}
}

func TestConfigShowPrintsDefaults(t *testing.T) {
	// Point at an empty directory so no real config file is picked up.
	t.Setenv("HOME", t.TempDir())

	output, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(output, "defaults (no configuration file found)") {
		t.Fatalf("missing defaults banner: %q", output)
	}
	if !strings.Contains(output, "music_volume") {
		t.Fatalf("missing mix settings: %q", output)
	}
}

func TestRootHelpListsPipelineCommands(t *testing.T) {
	output, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, name := range []string{"run", "fetch", "compose", "screenshots", "audio", "video", "timeline", "status", "config"} {
		if !strings.Contains(output, name) {
			t.Fatalf("help missing %q command:\n%s", name, output)
		}
	}
}
