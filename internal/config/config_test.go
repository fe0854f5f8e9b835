package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// bypass the package singleton so tests stay independent
	c, err := load(writeConfig(t, "server:\n  mode: debug\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Store.Backend != "file" {
		t.Errorf("default backend = %q, want file", c.Store.Backend)
	}
	if c.JWT.ExpireHours != 168 {
		t.Errorf("default expire_hours = %d, want 168", c.JWT.ExpireHours)
	}
	if c.Security.BcryptCost != 10 {
		t.Errorf("default bcrypt_cost = %d, want 10", c.Security.BcryptCost)
	}
	if len(c.Security.PrivilegedNames) == 0 {
		t.Error("default privileged_names is empty")
	}
}

func TestLoad_ReleaseRequiresSecrets(t *testing.T) {
	_, err := load(writeConfig(t, "server:\n  mode: release\n"))
	if err == nil {
		t.Fatal("release mode with no jwt.secret must fail closed")
	}

	_, err = load(writeConfig(t,
		"server:\n  mode: release\njwt:\n  secret: s3cret\nsecurity:\n  encryption_key: k3y\n"))
	if err != nil {
		t.Fatalf("release mode with secrets set: %v", err)
	}
}

func TestLoad_BadBackend(t *testing.T) {
	_, err := load(writeConfig(t, "store:\n  backend: mongodb\n"))
	if err == nil {
		t.Fatal("unknown backend must be rejected")
	}
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
