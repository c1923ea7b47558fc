package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8000" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.General.DefaultAppliance != "dishwasher" {
		t.Errorf("general.default_appliance = %q", cfg.General.DefaultAppliance)
	}
	if cfg.Session.StoreType != "inmemory" || cfg.Session.Shards != 16 {
		t.Errorf("session defaults = %+v", cfg.Session)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PARTSASSIST_SERVER_ADDRESS", ":9999")
	t.Setenv("PARTSASSIST_SESSION_SHARDS", "4")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("env override ignored, server.address = %q", cfg.Server.Address)
	}
	if cfg.Session.Shards != 4 {
		t.Errorf("env override ignored, session.shards = %d", cfg.Session.Shards)
	}
}

func TestSessionConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     SessionConfig
		wantErr bool
	}{
		{name: "empty defaults to inmemory", cfg: SessionConfig{}},
		{name: "inmemory", cfg: SessionConfig{StoreType: "inmemory"}},
		{name: "redis with host", cfg: SessionConfig{StoreType: "redis", Redis: RedisConfig{Host: "localhost"}}},
		{name: "redis without host", cfg: SessionConfig{StoreType: "redis"}, wantErr: true},
		{name: "unknown backend", cfg: SessionConfig{StoreType: "etcd"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}

func TestRedisAddrDefaultsPort(t *testing.T) {
	r := RedisConfig{Host: "cache"}
	if got := r.Addr(); got != "cache:6379" {
		t.Errorf("Addr() = %q", got)
	}
	r.Port = "6380"
	if got := r.Addr(); got != "cache:6380" {
		t.Errorf("Addr() = %q", got)
	}
}
