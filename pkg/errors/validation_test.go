package errors

import "testing"

func TestParseTargetPython(t *testing.T) {
	tests := []struct {
		in      string
		major   int
		minor   int
		wantErr bool
	}{
		{"3.11", 3, 11, false},
		{"3.8", 3, 8, false},
		{"3", 0, 0, true},
		{"3.x", 0, 0, true},
		{"2.7", 0, 0, true},
		{"3.7", 0, 0, true},
		{"", 0, 0, true},
		{"3.10.2", 0, 0, true},
	}
	for _, tt := range tests {
		major, minor, err := ParseTargetPython(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTargetPython(%q) expected error", tt.in)
			} else if !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ParseTargetPython(%q) error code = %s, want INVALID_CONFIG", tt.in, GetCode(err))
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTargetPython(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if major != tt.major || minor != tt.minor {
			t.Errorf("ParseTargetPython(%q) = %d.%d, want %d.%d", tt.in, major, minor, tt.major, tt.minor)
		}
	}
}

func TestValidatePythonPackageName(t *testing.T) {
	valid := []string{"requests", "Flask_Session", "zope.interface", "a"}
	for _, name := range valid {
		if err := ValidatePythonPackageName(name); err != nil {
			t.Errorf("ValidatePythonPackageName(%q) unexpected error: %v", name, err)
		}
	}

	invalid := []string{"", "-requests", "pkg\x00", "a/../b", "ends-with-"}
	for _, name := range invalid {
		if err := ValidatePythonPackageName(name); err == nil {
			t.Errorf("ValidatePythonPackageName(%q) expected error", name)
		}
	}
}
