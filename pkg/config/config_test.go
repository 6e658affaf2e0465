package config

import "testing"

func TestGetStringFallback(t *testing.T) {
	if got := GetString("SEVASATHI_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetString = %q, want fallback", got)
	}
	t.Setenv("SEVASATHI_TEST_STRING", "value")
	if got := GetString("SEVASATHI_TEST_STRING", "fallback"); got != "value" {
		t.Errorf("GetString = %q, want value", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("SEVASATHI_TEST_INT", "42")
	if got := GetInt("SEVASATHI_TEST_INT", 7); got != 42 {
		t.Errorf("GetInt = %d, want 42", got)
	}
	t.Setenv("SEVASATHI_TEST_INT", "not-a-number")
	if got := GetInt("SEVASATHI_TEST_INT", 7); got != 7 {
		t.Errorf("GetInt with invalid value = %d, want fallback 7", got)
	}
}

func TestGetBool(t *testing.T) {
	if got := GetBool("SEVASATHI_TEST_UNSET", true); !got {
		t.Error("GetBool unset should return fallback true")
	}
	t.Setenv("SEVASATHI_TEST_BOOL", "false")
	if got := GetBool("SEVASATHI_TEST_BOOL", true); got {
		t.Error("GetBool = true, want false")
	}
	t.Setenv("SEVASATHI_TEST_BOOL", "nope")
	if got := GetBool("SEVASATHI_TEST_BOOL", true); !got {
		t.Error("GetBool with invalid value should return fallback true")
	}
}

func TestMigrateOnStartFlag(t *testing.T) {
	t.Setenv("MIGRATE_ON_START", "false")
	cfg := LoadAPIConfig()
	if cfg.MigrateOnStart {
		t.Error("MIGRATE_ON_START=false not honoured")
	}
}
