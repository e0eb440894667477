package crm

import (
	"path/filepath"
	"testing"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	c := tokenCache{path: filepath.Join(t.TempDir(), "token.json")}

	if _, ok := c.Load(); ok {
		t.Fatal("Load on a missing cache should report not ok")
	}

	if err := c.Save("https://eu1.example.test", "tok-1", "refresh-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st, ok := c.Load()
	if !ok {
		t.Fatal("Load after Save failed")
	}
	if st.InstanceURL != "https://eu1.example.test" || st.AccessToken != "tok-1" || st.RefreshToken != "refresh-1" {
		t.Fatalf("loaded %+v", st)
	}
}

func TestTokenCachePreservesRefreshToken(t *testing.T) {
	c := tokenCache{path: filepath.Join(t.TempDir(), "token.json")}
	if err := c.Save("https://eu1.example.test", "tok-1", "refresh-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// a refresh grant rotated the access token but returned no refresh token
	if err := c.Save("https://eu1.example.test", "tok-2", ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st, ok := c.Load()
	if !ok {
		t.Fatal("Load failed")
	}
	if st.AccessToken != "tok-2" {
		t.Fatalf("access token %q, want tok-2", st.AccessToken)
	}
	if st.RefreshToken != "refresh-1" {
		t.Fatalf("refresh token %q, want refresh-1 preserved", st.RefreshToken)
	}
}

func TestTokenCacheEmptyPathIsInert(t *testing.T) {
	c := tokenCache{}
	if err := c.Save("https://eu1.example.test", "tok-1", ""); err != nil {
		t.Fatalf("Save with no path should be a no-op, got %v", err)
	}
	if _, ok := c.Load(); ok {
		t.Fatal("Load with no path should report not ok")
	}
}

func TestTokenCacheRejectsIncompleteState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	writeCache(t, path, tokenState{InstanceURL: "https://eu1.example.test"})
	if _, ok := (tokenCache{path: path}).Load(); ok {
		t.Fatal("cache without an access token should not load")
	}
}
