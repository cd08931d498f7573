package core

import "testing"

func TestNewAccountPhoneOptional(t *testing.T) {
	tests := []struct {
		name      string
		phone     string
		wantValid bool
		want      string
	}{
		{"absent phone stored as NULL", "", false, ""},
		{"whitespace phone stored as NULL", "   ", false, ""},
		{"phone kept when given", "+15550100", true, "+15550100"},
		{"phone trimmed", " +15550100 ", true, "+15550100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := newAccount("alice", "alice@example.com", tt.phone, "hash")
			if user.Phone.Valid != tt.wantValid {
				t.Fatalf("Phone.Valid = %v, want %v", user.Phone.Valid, tt.wantValid)
			}
			if user.Phone.String != tt.want {
				t.Errorf("Phone.String = %q, want %q", user.Phone.String, tt.want)
			}
		})
	}

	// Two phoneless registrations both read as NULL, so neither trips the
	// unique phone index.
	first := newAccount("alice", "alice@example.com", "", "hash")
	second := newAccount("bob", "bob@example.com", "", "hash")
	if first.Phone.Valid || second.Phone.Valid {
		t.Error("phoneless accounts must both store NULL phones")
	}
}
