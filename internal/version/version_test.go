package version

import "testing"

func TestIsNewer(t *testing.T) {
	cases := []struct {
		current   string
		candidate string
		want      bool
	}{
		// Basic ordering
		{"1.2.0", "1.3.0", true},
		{"1.3.0", "1.2.0", false},
		{"1.0.0", "1.0.0", false},
		{"1.0.0", "2.0.0", true},
		{"2.0.0", "1.99.99", false},
		{"0.0.1", "0.0.2", true},
		{"1.9.0", "1.10.0", true},

		// Missing trailing components pad with zero
		{"1.0", "1.0.0", false},
		{"1.0.0", "1.0", false},
		{"1.0", "1.0.1", true},
		{"1", "1.0.0.1", true},

		// Pre-release and build metadata are ignored on both sides
		{"1.0.0-beta", "1.0.1", true},
		{"1.0.0-beta", "1.0.0", false},
		{"1.0.0", "1.0.1-rc1", true},
		{"1.0.0-alpha", "1.0.0-beta", false},
		{"1.0.0-rc1-hotfix", "1.0.0", false},

		// Non-numeric components parse as zero
		{"1.x.0", "1.1.0", true},
		{"1.1.0", "1.x.0", false},
		{"abc", "0.0.1", true},
		{"abc", "def", false},

		// Degenerate input never reports an update
		{"", "", false},
		{"1.0.0", "", false},
		{"", "0.0.0", false},
	}

	for _, tc := range cases {
		if got := IsNewer(tc.current, tc.candidate); got != tc.want {
			t.Errorf("IsNewer(%q, %q) = %v, want %v", tc.current, tc.candidate, got, tc.want)
		}
	}
}
