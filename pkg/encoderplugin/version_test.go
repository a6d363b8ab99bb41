package encoderplugin

import (
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"1.0.0", Version{1, 0, 0}, false},
		{"v2.5.3", Version{2, 5, 3}, false},
		{"10.99.42", Version{10, 99, 42}, false},
		{"1.2", Version{}, true},
		{"1.x.0", Version{}, true},
		{"1.-1.0", Version{}, true},
		{"", Version{}, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		version string
		errText string
	}{
		{ProtocolVersion, ""},
		{"1.0.7", ""},
		{"1.4.0", ""},
		{"0.9.0", "incompatible"},
		{"2.0.0", "incompatible"},
		{"garbage", "invalid version"},
	}
	for _, tt := range tests {
		err := CheckCompatible(tt.version)
		if tt.errText == "" {
			if err != nil {
				t.Errorf("CheckCompatible(%q) = %v", tt.version, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.errText) {
			t.Errorf("CheckCompatible(%q) = %v, want error containing %q", tt.version, err, tt.errText)
		}
	}
}

func TestVersionLess(t *testing.T) {
	if !(Version{1, 0, 0}).Less(Version{1, 0, 1}) || (Version{1, 2, 0}).Less(Version{1, 1, 9}) {
		t.Error("unexpected ordering")
	}
	if (Version{1, 0, 0}).String() != "1.0.0" {
		t.Error("unexpected String()")
	}
}
