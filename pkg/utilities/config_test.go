package utilities

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	v := NewConfig()
	if got := v.GetString("HTTP_ADDR"); got != "0.0.0.0:8431" {
		t.Errorf("HTTP_ADDR = %q", got)
	}
	if got := v.GetString("STORE_DRIVER"); got != "bolt" {
		t.Errorf("STORE_DRIVER = %q", got)
	}
	if got := v.GetDuration("SHUTDOWN_TIMEOUT"); got != 5*time.Second {
		t.Errorf("SHUTDOWN_TIMEOUT = %v", got)
	}
	if got := v.GetInt64("SNOWFLAKE_NODE"); got != 1 {
		t.Errorf("SNOWFLAKE_NODE = %d", got)
	}
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("SHUTDOWN_TIMEOUT", "10s")

	v := NewConfig()
	if got := v.GetString("HTTP_ADDR"); got != "127.0.0.1:9000" {
		t.Errorf("HTTP_ADDR = %q", got)
	}
	if got := v.GetString("STORE_DRIVER"); got != "postgres" {
		t.Errorf("STORE_DRIVER = %q", got)
	}
	if got := v.GetDuration("SHUTDOWN_TIMEOUT"); got != 10*time.Second {
		t.Errorf("SHUTDOWN_TIMEOUT = %v", got)
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "subscriber-config.yaml")
	if err := os.WriteFile(cfgFile, []byte("BOLT_PATH: /data/subs.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	v, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := v.GetString("BOLT_PATH"); got != "/data/subs.db" {
		t.Errorf("BOLT_PATH = %q, want value from file", got)
	}
}
