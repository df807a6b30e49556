package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/domoticz"
	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// writeConfig writes a minimal config with every optional sink disabled.
func writeConfig(t *testing.T, dir, serialPort string) string {
	t.Helper()

	content := `
gateway:
  port: "` + serialPort + `"
  baud_rate: 115200

domoticz:
  url: "http://127.0.0.1:1"
  hardware_id: 3
  timeout: 200ms

registry:
  path: "` + filepath.Join(dir, "MySensors_DB.txt") + `"

logging:
  level: error
  format: text
  output: stdout
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("MYSGW_CONFIG", "")
	if got := getConfigPath(""); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("MYSGW_CONFIG", "/etc/mysgw/env.yaml")
	if got := getConfigPath(""); got != "/etc/mysgw/env.yaml" {
		t.Errorf("getConfigPath() = %q, want env value", got)
	}
	if got := getConfigPath("/tmp/flag.yaml"); got != "/tmp/flag.yaml" {
		t.Errorf("getConfigPath() = %q, want flag value", got)
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "mysgw dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_CorruptRegistry(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, filepath.Join(dir, "ttyMissing"))
	if err := os.WriteFile(filepath.Join(dir, "MySensors_DB.txt"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, configPath)
	if err == nil || !strings.Contains(err.Error(), "loading registry") {
		t.Errorf("run() error = %v, want registry failure", err)
	}
}

func TestRun_MissingSerialPort(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, filepath.Join(dir, "ttyMissing"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, configPath)
	if err == nil || !strings.Contains(err.Error(), "opening serial gateway") {
		t.Errorf("run() error = %v, want serial failure", err)
	}
}

func TestRegistryList(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "/dev/ttyUSB0")

	reg := registry.New()
	channels := []registry.Channel{
		{
			Node: 12, Child: 3, SensorType: mysensors.SensorTemp,
			DeviceID: 40, DeviceType: domoticz.DeviceTemp, Reading: "21.5",
			LastUpdate: time.Date(2026, 5, 4, 10, 0, 0, 0, time.Local), NodeInfo: "Lounge",
		},
		{Node: 7, Child: 1, SensorType: mysensors.SensorDistance},
	}
	for _, ch := range channels {
		if _, err := reg.Add(ch); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := registry.NewStore(filepath.Join(dir, "MySensors_DB.txt")).Save(reg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name      string
		args      []string
		wantLines int
		contains  []string
	}{
		{
			name:      "all",
			args:      []string{"registry", "list", "--config", configPath},
			wantLines: 3,
			contains:  []string{"S_TEMP", "D_TEMP", "21.5", "Lounge", "S_DISTANCE"},
		},
		{
			name:      "one node",
			args:      []string{"registry", "list", "-c", configPath, "--node", "7"},
			wantLines: 2,
			contains:  []string{"S_DISTANCE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			root := newRootCmd()
			root.SetOut(&out)
			root.SetArgs(tt.args)

			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			text := out.String()
			if lines := strings.Count(text, "\n"); lines != tt.wantLines {
				t.Errorf("lines = %d, want %d:\n%s", lines, tt.wantLines, text)
			}
			for _, s := range tt.contains {
				if !strings.Contains(text, s) {
					t.Errorf("output missing %q:\n%s", s, text)
				}
			}
		})
	}
}
