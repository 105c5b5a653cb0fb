package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	f, err := loadFixture("")
	if err != nil {
		t.Fatalf("built-in fixture: %v", err)
	}
	if f.Donors.Count != 10 {
		t.Errorf("donors = %d", f.Donors.Count)
	}

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("accounts: [{name: A, email: a@b.c, password: pw, role: donor}]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err = loadFixture(path)
	if err != nil {
		t.Fatalf("file fixture: %v", err)
	}
	if len(f.Accounts) != 1 || f.Donors.Count != 0 {
		t.Errorf("fixture = %+v", f)
	}

	if _, err := loadFixture(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestSeed_RejectsBadURI(t *testing.T) {
	cmd := seedCmd()
	cmd.PersistentFlags().String("mongo-uri", "http://not-mongo", "")
	cmd.PersistentFlags().String("database", "x", "")
	cmd.PersistentFlags().Bool("verbose", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(nil)

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid --mongo-uri") {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("BLOODLINK_CTL_TEST", "")
	if got := envOr("BLOODLINK_CTL_TEST", "def"); got != "def" {
		t.Errorf("unset: %q", got)
	}
	t.Setenv("BLOODLINK_CTL_TEST", "set")
	if got := envOr("BLOODLINK_CTL_TEST", "def"); got != "set" {
		t.Errorf("set: %q", got)
	}
}
