package crm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "oppwatch/internal/platform/errors"
	"oppwatch/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const (
	authorizePath = "/services/oauth2/authorize"
	tokenPath     = "/services/oauth2/token"
	probePath     = "/services/data"

	defaultCallbackTimeout = 120 * time.Second
)

// authenticator owns the connect/reconnect strategies. Order on connect:
// cached token (validated with a probe), refresh-token grant, interactive
// browser flow. Only when all three fail does the run die
type authenticator struct {
	http *http.Client
	opts Options

	// base is the authorization host, e.g. https://login.salesforce.com
	base  string
	cache tokenCache
	log   logger.Logger
}

func newAuthenticator(opts Options, hc *http.Client) *authenticator {
	d := opts.Domain
	if d == "" {
		d = "login"
	}
	return &authenticator{
		http:  hc,
		opts:  opts,
		base:  "https://" + d + ".salesforce.com",
		cache: tokenCache{path: opts.TokenCachePath},
		log:   *logger.Named("crm-auth"),
	}
}

// tokenResponse is the token endpoint payload for both grant types
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	InstanceURL  string `json:"instance_url"`
}

// connect tries cached, then refresh, then interactive
func (a *authenticator) connect(ctx context.Context) (*Session, error) {
	if sess, ok := a.cached(ctx); ok {
		a.log.Debug().Msg("using cached session")
		return sess, nil
	}
	if sess, ok := a.refreshGrant(ctx); ok {
		a.log.Debug().Msg("session refreshed silently")
		return sess, nil
	}
	sess, err := a.interactive(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeAuth, "all authentication strategies exhausted")
	}
	return sess, nil
}

// reconnect re-authenticates after session expiry: refresh preferred,
// interactive as last resort
func (a *authenticator) reconnect(ctx context.Context) (*Session, error) {
	if sess, ok := a.refreshGrant(ctx); ok {
		return sess, nil
	}
	sess, err := a.interactive(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeAuth, "re-authentication failed")
	}
	return sess, nil
}

// cached loads the token cache and probes it against the source so an
// expired access token never leaks into the first real query
func (a *authenticator) cached(ctx context.Context) (*Session, bool) {
	st, ok := a.cache.Load()
	if !ok {
		return nil, false
	}
	sess := &Session{InstanceURL: st.InstanceURL, AccessToken: st.AccessToken}
	if !a.probe(ctx, sess) {
		return nil, false
	}
	return sess, true
}

// probe issues a cheap authenticated request; any non-200 means the token is unusable
func (a *authenticator) probe(ctx context.Context, sess *Session) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sess.InstanceURL+probePath, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	resp, err := a.http.Do(req)
	if err != nil {
		return false
	}
	_ = drainAndClose(resp.Body)
	return resp.StatusCode == http.StatusOK
}

// refreshGrant exchanges a refresh token for a fresh session.
// The token comes from config first (CI path), then the cache (local path)
func (a *authenticator) refreshGrant(ctx context.Context) (*Session, bool) {
	refresh := a.opts.RefreshToken
	if refresh == "" {
		st, ok := a.cache.Load()
		if !ok || st.RefreshToken == "" {
			return nil, false
		}
		refresh = st.RefreshToken
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
		"client_id":     {a.opts.ClientID},
		"client_secret": {a.opts.ClientSecret},
	}
	tok, err := a.postToken(ctx, form)
	if err != nil {
		a.log.Warn().Err(err).Msg("refresh grant failed")
		return nil, false
	}
	if err := a.cache.Save(tok.InstanceURL, tok.AccessToken, tok.RefreshToken); err != nil {
		a.log.Warn().Err(err).Msg("token cache save failed")
	}
	return &Session{InstanceURL: tok.InstanceURL, AccessToken: tok.AccessToken}, true
}

// interactive runs the authorization-code flow: print the authorize URL,
// capture the code on a short-lived loopback listener, exchange it
func (a *authenticator) interactive(ctx context.Context) (*Session, error) {
	authURL := a.base + authorizePath +
		"?response_type=code&client_id=" + url.QueryEscape(a.opts.ClientID) +
		"&redirect_uri=" + url.QueryEscape(a.opts.RedirectURI) +
		"&scope=" + url.QueryEscape("full refresh_token")

	a.log.Info().Str("url", authURL).Msg("open this URL in a browser to log in")

	code, err := a.waitForCallback(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {a.opts.ClientID},
		"client_secret": {a.opts.ClientSecret},
		"redirect_uri":  {a.opts.RedirectURI},
	}
	tok, err := a.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Save(tok.InstanceURL, tok.AccessToken, tok.RefreshToken); err != nil {
		a.log.Warn().Err(err).Msg("token cache save failed")
	}
	return &Session{InstanceURL: tok.InstanceURL, AccessToken: tok.AccessToken}, nil
}

// waitForCallback binds the redirect URI port and blocks for one code
// delivery, with a hard receive timeout
func (a *authenticator) waitForCallback(ctx context.Context) (string, error) {
	u, err := url.Parse(a.opts.RedirectURI)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "bad redirect URI")
	}
	addr := u.Host
	if u.Port() == "" {
		addr = u.Hostname() + ":80"
	}
	path := u.Path
	if path == "" {
		path = "/callback"
	}

	timeout := a.opts.CallbackTimeout
	if timeout <= 0 {
		timeout = defaultCallbackTimeout
	}

	codeCh := make(chan string, 1)
	r := chi.NewRouter()
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		code := req.URL.Query().Get("code")
		if code == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<h3>Auth complete. You can close this tab.</h3>"))
		select {
		case codeCh <- code:
		default:
		}
	})

	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if serr := srv.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
			errCh <- serr
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	a.log.Info().Str("addr", addr).Msg("listening for auth callback")

	select {
	case code := <-codeCh:
		return code, nil
	case serr := <-errCh:
		return "", perr.Wrap(serr, perr.ErrorCodeAuth, "callback listener failed")
	case <-time.After(timeout):
		return "", perr.Authf("timed out waiting for auth callback")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// postToken exchanges a grant at the token endpoint
func (a *authenticator) postToken(ctx context.Context, form url.Values) (tokenResponse, error) {
	endpoint := a.base + tokenPath
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return tokenResponse{}, perr.Wrap(err, perr.ErrorCodeUnknown, "token request build failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return tokenResponse{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "token endpoint unreachable")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return tokenResponse{}, perr.Newf(
			perr.ErrorCodeAuth, "token endpoint status %d body %s", resp.StatusCode, string(body),
		)
	}

	var tok tokenResponse
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return tokenResponse{}, err
	}
	if err := json.Unmarshal(b, &tok); err != nil {
		return tokenResponse{}, perr.Wrap(err, perr.ErrorCodeJSON, "token response decode failed")
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return tokenResponse{}, perr.Authf("token response missing access token or instance URL")
	}
	return tok, nil
}
