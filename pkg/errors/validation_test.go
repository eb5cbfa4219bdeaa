package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Innenpolitik", false},
		{"spaces and unicode", "Außen politik", false},
		{"empty", "", true},
		{"control character", "a\x00b", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTree) {
				t.Errorf("expected INVALID_TREE, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"bubble_chart", false},
		{"chart-1.main", false},
		{"", true},
		{"has space", true},
		{"_leading", true},
		{"slash/inside", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateElementID(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#ff5f56", false},
		{"#fff", false},
		{"#ff5f5680", false},
		{"transparent", false},
		{"red", false},
		{"orange", false},
		{"SteelBlue", false},
		{"", true},
		{"notacolor", true},
		{"#ggg", true},
		{"rgb(1,2,3)", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateColor("color", tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("out/chart.svg"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePath(""); err == nil {
		t.Error("expected error for empty path")
	}
	if err := ValidatePath("bad\x00path"); err == nil {
		t.Error("expected error for null byte")
	}
}
