package internal

import "testing"

func TestConfig_Normalize(t *testing.T) {
	got := Config{FenceThreshold: -1}.Normalize()
	want := DefaultConfig()

	if len(got.InfoStrings) != 1 || got.InfoStrings[0] != "vis" {
		t.Errorf("InfoStrings = %v, want %v", got.InfoStrings, want.InfoStrings)
	}
	if got.FenceThreshold != want.FenceThreshold {
		t.Errorf("FenceThreshold = %d, want %d", got.FenceThreshold, want.FenceThreshold)
	}
	if got.LogLevel != want.LogLevel {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, want.LogLevel)
	}
}

func TestConfig_EngineKey(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		modify func(*Config)
		same   bool
	}{
		{name: "unchanged", modify: func(c *Config) {}, same: true},
		{name: "log level does not affect merges", modify: func(c *Config) { c.LogLevel = "debug" }, same: true},
		{name: "cache dir does not affect merges", modify: func(c *Config) { c.CacheDir = "/tmp/other" }, same: true},
		{name: "info strings", modify: func(c *Config) { c.InfoStrings = []string{"vis", "card"} }},
		{name: "fence threshold", modify: func(c *Config) { c.FenceThreshold = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if got := cfg.EngineKey() == base.EngineKey(); got != tt.same {
				t.Errorf("EngineKey() %q vs %q: same = %v, want %v", cfg.EngineKey(), base.EngineKey(), got, tt.same)
			}
		})
	}
}
