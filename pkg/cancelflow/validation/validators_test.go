package validation

import (
	"strings"
	"testing"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"
)

func TestValidateReason(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		otherText string
		wantErr   apperrors.Code
		wantOther string
	}{
		{
			name: "valid plain reason",
			code: "too_expensive",
		},
		{
			name:      "other with text",
			code:      "other",
			otherText: "layoffs",
			wantOther: "layoffs",
		},
		{
			name:      "other with markup stripped",
			code:      "other",
			otherText: "<script>alert(1)</script>layoffs",
			wantOther: "alert(1)layoffs",
		},
		{
			name:    "other empty",
			code:    "other",
			wantErr: apperrors.CodeEmptyRequiredField,
		},
		{
			name:      "other whitespace only",
			code:      "other",
			otherText: "   ",
			wantErr:   apperrors.CodeEmptyRequiredField,
		},
		{
			name:    "unknown code",
			code:    "hates_mondays",
			wantErr: apperrors.CodeInvalidEnum,
		},
		{
			name:    "empty code",
			code:    "",
			wantErr: apperrors.CodeInvalidEnum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, other, err := ValidateReason(tt.code, tt.otherText)

			if tt.wantErr != "" {
				if apperrors.CodeOf(err) != tt.wantErr {
					t.Errorf("err code = %q, want %q", apperrors.CodeOf(err), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(reason) != tt.code {
				t.Errorf("reason = %q, want %q", reason, tt.code)
			}
			if other != tt.wantOther {
				t.Errorf("other = %q, want %q", other, tt.wantOther)
			}
		})
	}
}

func TestValidateReasonOtherTruncated(t *testing.T) {
	long := strings.Repeat("a", MaxReasonOtherLen+100)
	_, other, err := ValidateReason("other", long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len([]rune(other)) != MaxReasonOtherLen {
		t.Errorf("other length = %d, want %d", len([]rune(other)), MaxReasonOtherLen)
	}
}

func TestValidateIdentifier(t *testing.T) {
	id, err := ValidateIdentifier("user_id", "3f1c0a84-14d2-4f5a-9c29-6f3a2a2d9e11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "3f1c0a84-14d2-4f5a-9c29-6f3a2a2d9e11" {
		t.Errorf("unexpected identifier %s", id)
	}

	for _, bad := range []string{"", "not-a-uuid", "3f1c0a84-14d2-4f5a-9c29"} {
		_, err := ValidateIdentifier("user_id", bad)
		if apperrors.CodeOf(err) != apperrors.CodeMalformedID {
			t.Errorf("ValidateIdentifier(%q) code = %q, want %q", bad, apperrors.CodeOf(err), apperrors.CodeMalformedID)
		}
	}
}

func TestValidateVariant(t *testing.T) {
	for _, v := range []string{"A", "B"} {
		got, err := ValidateVariant(v)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", v, err)
		}
		if string(got) != v {
			t.Errorf("variant = %q, want %q", got, v)
		}
	}

	for _, bad := range []string{"", "a", "C", "AB"} {
		if _, err := ValidateVariant(bad); apperrors.CodeOf(err) != apperrors.CodeInvalidEnum {
			t.Errorf("ValidateVariant(%q) should fail with %s", bad, apperrors.CodeInvalidEnum)
		}
	}
}

func TestValidatePricing(t *testing.T) {
	tests := []struct {
		name     string
		original int64
		offered  int64
		wantErr  bool
	}{
		{name: "discounted", original: 2500, offered: 1500},
		{name: "equal prices", original: 2500, offered: 2500},
		{name: "free offer", original: 2500, offered: 0},
		{name: "offered above original", original: 2500, offered: 2600, wantErr: true},
		{name: "zero original", original: 0, offered: 0, wantErr: true},
		{name: "negative original", original: -100, offered: 0, wantErr: true},
		{name: "negative offered", original: 2500, offered: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePricing(tt.original, tt.offered)
			if tt.wantErr {
				if apperrors.CodeOf(err) != apperrors.CodeInvalidRange {
					t.Errorf("err code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeInvalidRange)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeFreeText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "empty in empty out", input: "", maxLen: 100, want: ""},
		{name: "plain text untouched", input: "just feedback", maxLen: 100, want: "just feedback"},
		{name: "tags stripped", input: "<b>bold</b> text", maxLen: 100, want: "bold text"},
		{name: "dangerous chars removed", input: `a & b "quoted" 'single'`, maxLen: 100, want: "a  b quoted single"},
		{name: "control chars removed", input: "line\x00one\x1ftwo", maxLen: 100, want: "lineonetwo"},
		{name: "trimmed", input: "  padded  ", maxLen: 100, want: "padded"},
		{name: "truncated", input: "abcdef", maxLen: 3, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFreeText(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("SanitizeFreeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIPAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "192.168.1.1", want: "192.168.1.1"},
		{input: "2001:db8::1", want: "2001:db8::1"},
		{input: "999.1.1.1", want: ""},
		{input: "not an ip", want: ""},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		if got := SanitizeIPAddress(tt.input); got != tt.want {
			t.Errorf("SanitizeIPAddress(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeSessionID(t *testing.T) {
	if got := SanitizeSessionID("sess_1234567890"); got != "sess_1234567890" {
		t.Errorf("valid session id mangled: %q", got)
	}
	if got := SanitizeSessionID("short"); got != "" {
		t.Errorf("too-short session id should be dropped, got %q", got)
	}
}

func TestReasonDisplayText(t *testing.T) {
	if got := ReasonDisplayText(entity.ReasonTooExpensive); got != "Too expensive" {
		t.Errorf("display text = %q", got)
	}
	for _, r := range entity.CancellationReasons {
		if ReasonDisplayText(r) == "" {
			t.Errorf("no display text for %s", r)
		}
	}
}
