package main

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerLevel(t *testing.T) {
	tests := []struct {
		level     string
		debugOn   bool
		infoOn    bool
		warningOn bool
	}{
		{level: "debug", debugOn: true, infoOn: true, warningOn: true},
		{level: "info", debugOn: false, infoOn: true, warningOn: true},
		{level: "warn", debugOn: false, infoOn: false, warningOn: true},
		{level: "", debugOn: false, infoOn: true, warningOn: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			core := newLogger(tt.level).Core()
			if core.Enabled(zap.DebugLevel) != tt.debugOn ||
				core.Enabled(zap.InfoLevel) != tt.infoOn ||
				core.Enabled(zap.WarnLevel) != tt.warningOn {
				t.Errorf("level %q: debug=%v info=%v warn=%v", tt.level,
					core.Enabled(zap.DebugLevel), core.Enabled(zap.InfoLevel), core.Enabled(zap.WarnLevel))
			}
		})
	}
}
