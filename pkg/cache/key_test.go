package cache

import "testing"

const (
	testBase = "https://api.mod.io/v1"
	testKey  = "KEY"
)

func TestKeyNormalizer_TryNormalize(t *testing.T) {
	n := NewKeyNormalizer(testBase, testKey)

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{
			name:   "credential as only parameter",
			url:    testBase + "/mods/5?api_key=KEY",
			want:   "mods/5",
			wantOK: true,
		},
		{
			name:   "credential after other parameters",
			url:    testBase + "/games/1/mods?_sort=name&api_key=KEY",
			want:   "games/1/mods?_sort=name",
			wantOK: true,
		},
		{
			name:   "credential before other parameters",
			url:    testBase + "/games/1/mods?api_key=KEY&_limit=10",
			want:   "games/1/mods?_limit=10",
			wantOK: true,
		},
		{
			name:   "credential in the middle",
			url:    testBase + "/games?_offset=5&api_key=KEY&_limit=10",
			want:   "games?_offset=5&_limit=10",
			wantOK: true,
		},
		{
			name:   "no credential",
			url:    testBase + "/games/1",
			want:   "games/1",
			wantOK: true,
		},
		{
			name:   "longer key is not stripped",
			url:    testBase + "/mods/5?api_key=KEY2",
			want:   "mods/5?api_key=KEY2",
			wantOK: true,
		},
		{
			name:   "similar parameter name is not stripped",
			url:    testBase + "/mods/5?x_api_key=KEY",
			want:   "mods/5?x_api_key=KEY",
			wantOK: true,
		},
		{
			name: "empty url",
			url:  "",
		},
		{
			name: "third party url",
			url:  "https://cdn.example.com/mods/5?api_key=KEY",
		},
		{
			name: "exactly the base url",
			url:  testBase,
		},
		{
			name: "base url with slash only",
			url:  testBase + "/",
		},
		{
			name: "sibling version path",
			url:  testBase + "0/mods/5",
		},
		{
			name: "only the credential",
			url:  testBase + "/?api_key=KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.TryNormalize(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("TryNormalize(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("TryNormalize(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestKeyNormalizer_TrailingSlashBase(t *testing.T) {
	n := NewKeyNormalizer(testBase+"/", testKey)
	if n.BaseURL() != testBase {
		t.Errorf("BaseURL() = %q, want %q", n.BaseURL(), testBase)
	}
	got, ok := n.TryNormalize(testBase + "/mods/5?api_key=KEY")
	if !ok || got != "mods/5" {
		t.Errorf("TryNormalize = (%q, %v), want (mods/5, true)", got, ok)
	}
}

func TestKeyNormalizer_NoAPIKey(t *testing.T) {
	n := NewKeyNormalizer(testBase, "")
	got, ok := n.TryNormalize(testBase + "/mods/5?api_key=KEY")
	if !ok || got != "mods/5?api_key=KEY" {
		t.Errorf("TryNormalize = (%q, %v), want credential kept", got, ok)
	}
}

func TestKeyNormalizer_ZeroValue(t *testing.T) {
	var n KeyNormalizer
	if _, ok := n.TryNormalize(testBase + "/mods/5"); ok {
		t.Error("zero KeyNormalizer should refuse every URL")
	}
}

// TestKeyNormalizer_Determinism ensures equivalent URLs share one key.
func TestKeyNormalizer_Determinism(t *testing.T) {
	n := NewKeyNormalizer(testBase, testKey)
	urls := []string{
		testBase + "/mods/5",
		testBase + "/mods/5?api_key=KEY",
	}

	for _, u := range urls {
		got, ok := n.TryNormalize(u)
		if !ok || got != "mods/5" {
			t.Errorf("TryNormalize(%q) = (%q, %v), want (mods/5, true)", u, got, ok)
		}
	}
}
