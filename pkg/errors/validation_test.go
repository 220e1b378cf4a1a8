package errors

import (
	"testing"
)

func TestValidateCoordinatePart(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		required bool
		wantErr  bool
	}{
		{"valid group", "org.apache.commons", true, false},
		{"valid jpp group", "JPP/commons", true, false},
		{"valid version", "blah-1.2.3-foo", true, false},
		{"optional empty", "", false, false},

		{"required empty", "", true, true},
		{"too long", string(make([]byte, 300)), true, true},
		{"colon", "foo:bar", true, true},
		{"path traversal", "foo/../bar", true, true},
		{"backslash", "foo\\bar", true, true},
		{"control char", "foo\x01bar", true, true},
		{"newline", "foo\nbar", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinatePart("group", tt.input, tt.required)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinatePart(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCoordinate) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidCoordinate)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "usr/share/java", false},
		{"absolute", "/opt/rh/addon", false},
		{"dots in name", "usr/share/maven..poms", false},

		{"empty", "", true},
		{"traversal", "usr/../etc", true},
		{"backslash", "usr\\share", true},
		{"null byte", "usr\x00share", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
