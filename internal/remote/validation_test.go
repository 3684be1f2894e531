package remote

import (
	"strings"
	"testing"
)

func TestValidateListTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"valid", "groceries", false},
		{"valid with spaces", "weekend errands", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"newline", "groceries\nlist", true},
		{"carriage return", "groceries\rlist", true},
		{"at limit", strings.Repeat("a", 1024), false},
		{"over limit", strings.Repeat("a", 1025), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateListTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateListTitle(%q) = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaskTitle(t *testing.T) {
	if err := ValidateTaskTitle("buy milk"); err != nil {
		t.Errorf("ValidateTaskTitle(buy milk) = %v", err)
	}
	if err := ValidateTaskTitle(""); err == nil {
		t.Error("ValidateTaskTitle(empty) = nil, want error")
	}
}
