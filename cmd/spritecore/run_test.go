package main

import "testing"

func TestCheckRunFlags(t *testing.T) {
	tests := []struct {
		name     string
		realtime bool
		record   string
		replay   string
		wantErr  bool
	}{
		{"fixed step", false, "", "", false},
		{"fixed step record", false, "a.rec", "", false},
		{"fixed step replay", false, "", "a.rec", false},
		{"realtime", true, "", "", false},
		{"realtime record", true, "a.rec", "", true},
		{"realtime replay", true, "", "a.rec", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRunFlags(tt.realtime, tt.record, tt.replay)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkRunFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
