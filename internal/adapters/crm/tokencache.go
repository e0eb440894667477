package crm

import (
	"encoding/json"
	"os"

	perr "oppwatch/internal/platform/errors"
)

// tokenState is the persisted authentication state. It survives process
// restarts and is overwritten on every successful (re-)authentication
type tokenState struct {
	InstanceURL  string `json:"instance_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// tokenCache is a single mutable slot on disk. No locking: concurrent runs
// against the same cache are unsupported
type tokenCache struct {
	path string
}

// Load reads the cached token state; ok is false when the cache is missing
// or unreadable
func (c tokenCache) Load() (tokenState, bool) {
	if c.path == "" {
		return tokenState{}, false
	}
	b, err := os.ReadFile(c.path)
	if err != nil {
		return tokenState{}, false
	}
	var st tokenState
	if err := json.Unmarshal(b, &st); err != nil {
		return tokenState{}, false
	}
	if st.AccessToken == "" || st.InstanceURL == "" {
		return tokenState{}, false
	}
	return st, true
}

// Save overwrites the cache. A refresh grant does not always return a new
// refresh token; when refreshToken is empty an existing one is preserved
func (c tokenCache) Save(instanceURL, accessToken, refreshToken string) error {
	if c.path == "" {
		return nil
	}
	st := tokenState{InstanceURL: instanceURL, AccessToken: accessToken, RefreshToken: refreshToken}
	if st.RefreshToken == "" {
		if old, ok := c.Load(); ok && old.RefreshToken != "" {
			st.RefreshToken = old.RefreshToken
		}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "token cache marshal failed")
	}
	if err := os.WriteFile(c.path, b, 0o600); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "token cache write failed")
	}
	return nil
}
