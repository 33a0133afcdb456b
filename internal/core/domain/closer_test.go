package domain

import "testing"

func TestDeriveEmail(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"simple", "John", "Doe", "john-d@example.com"},
		{"lowercased", "ANN", "LEE", "ann-l@example.com"},
		{"trims whitespace", " Jane ", " Smith ", "jane-s@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveEmail(tt.first, tt.last, "example.com"); got != tt.want {
				t.Fatalf("DeriveEmail(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
			}
		})
	}
}

func TestDeriveEmailVariantIsDeterministic(t *testing.T) {
	got := DeriveEmailVariant("John", "Doe", "example.com", 2)
	if got != "john-d2@example.com" {
		t.Fatalf("variant 2 = %q", got)
	}
	if again := DeriveEmailVariant("John", "Doe", "example.com", 2); again != got {
		t.Fatalf("variant derivation must be deterministic: %q vs %q", got, again)
	}
}

func TestProgressSummarize(t *testing.T) {
	p := NewProgress(StageSkipped)
	p[PlatformGoogleWorkspace] = &StageResult{Status: StageSuccess}
	p[PlatformCalendly] = &StageResult{Status: StageFailed, Error: "boom"}
	p[PlatformTwilio] = &StageResult{Status: StageManual}

	s := p.Summarize(3)
	if s.Total != 3 || s.Successful != 1 || s.Failed != 1 || s.ManualAction != 1 || s.Skipped != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestCRMUserIsEmployee(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ann-l@tjr.test", true},
		{"ann.lee@gmail.com", false},
		{"", false},
		{"tjr.test", false},
	}
	for _, tt := range tests {
		u := CRMUser{Email: tt.email}
		if got := u.IsEmployee("tjr.test"); got != tt.want {
			t.Fatalf("IsEmployee(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestPlatformSelectionCount(t *testing.T) {
	sel := PlatformSelection{PlatformTwilio: true, PlatformZoom: false, PlatformGHL: true}
	if sel.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", sel.Count())
	}
	if AllPlatforms().Count() != len(PlatformOrder) {
		t.Fatal("AllPlatforms must select every platform")
	}
}
