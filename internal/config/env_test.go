package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".aweshrc")
	content := strings.Join([]string{
		"# comment",
		"AWESH_TEST_FOO=bar",
		`AWESH_TEST_BAR="baz qux"`,
		"export AWESH_TEST_ZED=1",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := LoadRC(path)
	if err != nil {
		t.Fatalf("LoadRC: %v", err)
	}
	if s["AWESH_TEST_FOO"] != "bar" {
		t.Fatalf("AWESH_TEST_FOO = %q, want %q", s["AWESH_TEST_FOO"], "bar")
	}
	if s["AWESH_TEST_BAR"] != "baz qux" {
		t.Fatalf("AWESH_TEST_BAR = %q, want %q", s["AWESH_TEST_BAR"], "baz qux")
	}
	if s["AWESH_TEST_ZED"] != "1" {
		t.Fatalf("AWESH_TEST_ZED = %q, want %q", s["AWESH_TEST_ZED"], "1")
	}
}

func TestLoadRCMissingFileIsNotError(t *testing.T) {
	s, err := LoadRC(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("LoadRC on missing file: %v", err)
	}
	if len(s) != 0 {
		t.Fatalf("expected empty settings, got %v", s)
	}
}

func TestExportToEnvironSkipsModelAndExisting(t *testing.T) {
	os.Unsetenv("AWESH_TEST_EXPORTED")
	t.Setenv("AWESH_TEST_KEEP", "existing")

	s := Settings{
		"AWESH_TEST_EXPORTED": "value",
		"AWESH_TEST_KEEP":      "from-file",
		"MODEL":                "gpt-5",
	}
	if err := s.ExportToEnviron(); err != nil {
		t.Fatalf("ExportToEnviron: %v", err)
	}

	if got := os.Getenv("AWESH_TEST_EXPORTED"); got != "value" {
		t.Fatalf("AWESH_TEST_EXPORTED = %q, want %q", got, "value")
	}
	if got := os.Getenv("AWESH_TEST_KEEP"); got != "existing" {
		t.Fatalf("AWESH_TEST_KEEP = %q, want unchanged %q", got, "existing")
	}
	if _, exists := os.LookupEnv("MODEL"); exists {
		t.Fatal("MODEL must never be exported to children")
	}
}

func TestRCPathFallsBackToIni(t *testing.T) {
	dir := t.TempDir()
	if got, want := RCPath(dir), filepath.Join(dir, ".awesh_config.ini"); got != want {
		t.Fatalf("RCPath with no files = %q, want %q", got, want)
	}

	rc := filepath.Join(dir, ".aweshrc")
	if err := os.WriteFile(rc, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := RCPath(dir); got != rc {
		t.Fatalf("RCPath with .aweshrc present = %q, want %q", got, rc)
	}
}
