// internal/appconfig/appconfig_test.go
package appconfig

import "testing"

func TestLogFilePath(t *testing.T) {
	t.Parallel()

	if got := (Config{}).LogFilePath(); got != "latlens.log" {
		t.Fatalf("default log path=%q", got)
	}
	if got := (Config{LogFile: "  "}).LogFilePath(); got != "latlens.log" {
		t.Fatalf("blank log path=%q want default", got)
	}
	if got := (Config{LogFile: "logs/app.log"}).LogFilePath(); got != "logs/app.log" {
		t.Fatalf("explicit log path=%q", got)
	}
}

func TestSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		wantSLO  float64
		wantBins int
		wantZone string
	}{
		{name: "defaults", cfg: Config{}, wantSLO: 800, wantBins: 40, wantZone: "UTC"},
		{name: "explicit values", cfg: Config{SLOMs: 1500, DesiredBins: 60, TimeZone: "America/Chicago"},
			wantSLO: 1500, wantBins: 60, wantZone: "America/Chicago"},
		{name: "out of range bins fall back", cfg: Config{DesiredBins: 500}, wantSLO: 800, wantBins: 40, wantZone: "UTC"},
		{name: "negative slo falls back", cfg: Config{SLOMs: -10}, wantSLO: 800, wantBins: 40, wantZone: "UTC"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			settings := tt.cfg.Settings()
			if settings.SLOMs != tt.wantSLO || settings.DesiredBins != tt.wantBins || settings.TimeZone != tt.wantZone {
				t.Fatalf("Settings()=%+v", settings)
			}
		})
	}
}
