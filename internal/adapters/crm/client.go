package crm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	perr "oppwatch/internal/platform/errors"
	"oppwatch/internal/platform/logger"
)

// apiVersion pins the REST query surface
const apiVersion = "v59.0"

// Querier is the read surface the report layer depends on.
// Implementations must survive transient faults and session expiry
// without the caller noticing
type Querier interface {
	// Query runs one query and follows pagination until every record
	// is collected
	Query(ctx context.Context, soql string) ([]Record, error)

	// QueryIDBatches expands the {ids} placeholder in the template for
	// each batch of ids and concatenates the results. An empty id list
	// returns no records and performs no remote calls
	QueryIDBatches(ctx context.Context, template string, ids []string) ([]Record, error)

	// InstanceURL is the base URL of the connected org, for building
	// record links in rendered output
	InstanceURL() string
}

// Options configures the client and its authenticator.
// Validation tags are enforced by the module layer before construction
type Options struct {
	ClientID     string `conf:"CRM_CLIENT_ID" validate:"required"`
	ClientSecret string `conf:"CRM_CLIENT_SECRET" validate:"required"`

	// Domain is the login host prefix, "login" for production orgs,
	// "test" for sandboxes
	Domain string `conf:"CRM_DOMAIN"`

	// RedirectURI must match the connected app's callback setting
	RedirectURI string `conf:"CRM_REDIRECT_URI" validate:"required,url"`

	// RefreshToken, when set, skips the interactive flow entirely (CI path)
	RefreshToken string `conf:"CRM_REFRESH_TOKEN"`

	TokenCachePath  string        `conf:"CRM_TOKEN_CACHE" validate:"required"`
	CallbackTimeout time.Duration `conf:"CRM_CALLBACK_TIMEOUT"`

	// MaxRetries is the total attempt budget per HTTP call for
	// transient faults. Session recovery does not consume it
	MaxRetries int           `conf:"CRM_MAX_RETRIES" validate:"gte=1"`
	RetryBase  time.Duration `conf:"CRM_RETRY_BASE" validate:"gt=0"`

	// BatchSize caps ids per query so statement length stays bounded
	BatchSize int           `conf:"CRM_BATCH_SIZE" validate:"gte=1"`
	Timeout   time.Duration `conf:"CRM_TIMEOUT" validate:"gt=0"`
}

// Client is the resilient query client. Safe for concurrent use once
// connected: the session slot swaps atomically under re-auth
type Client struct {
	http *http.Client
	auth *authenticator
	sess sessionSlot
	opts Options
	log  logger.Logger

	// seams for tests
	now   func() time.Time
	sleep func(d time.Duration)
}

// New builds a client. Connect must be called before the first query
func New(opts Options) *Client {
	hc := &http.Client{Timeout: opts.Timeout}
	return &Client{
		http:  hc,
		auth:  newAuthenticator(opts, hc),
		opts:  opts,
		log:   *logger.Named("crm"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Connect authenticates and installs the session. Call once per run
func (c *Client) Connect(ctx context.Context) error {
	sess, err := c.auth.connect(ctx)
	if err != nil {
		return err
	}
	c.sess.Replace(sess)
	c.log.Info().Str("instance", sess.InstanceURL).Msg("connected")
	return nil
}

// InstanceURL implements Querier
func (c *Client) InstanceURL() string {
	if s := c.sess.Current(); s != nil {
		return s.InstanceURL
	}
	return ""
}

// queryPage is one page of a REST query response
type queryPage struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	NextRecordsURL string   `json:"nextRecordsUrl"`
	Records        []Record `json:"records"`
}

// Query implements Querier. Pagination is followed eagerly so callers
// always see the complete result set
func (c *Client) Query(ctx context.Context, soql string) ([]Record, error) {
	path := "/services/data/" + apiVersion + "/query?q=" + url.QueryEscape(soql)

	var out []Record
	for {
		page, err := c.fetchPage(ctx, path)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Records {
			delete(rec, "attributes")
			out = append(out, rec)
		}
		if page.Done || page.NextRecordsURL == "" {
			return out, nil
		}
		path = page.NextRecordsURL
	}
}

// QueryIDBatches implements Querier
func (c *Client) QueryIDBatches(ctx context.Context, template string, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []Record
	for _, batch := range BatchIDs(ids, c.opts.BatchSize) {
		recs, err := c.Query(ctx, expandIDs(template, batch))
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// fetchPage performs one GET with the full fault policy: transient
// errors burn the retry budget with doubling backoff, session expiry
// triggers at most one re-auth and a free replay
func (c *Client) fetchPage(ctx context.Context, path string) (queryPage, error) {
	var (
		lastErr   error
		reauthed  bool
		remaining = c.opts.MaxRetries
	)
	backoff := c.opts.RetryBase

	for remaining > 0 {
		page, err := c.doGET(ctx, path)
		if err == nil {
			return page, nil
		}
		lastErr = err

		switch {
		case perr.IsSessionExpired(err) && !reauthed:
			reauthed = true
			c.log.Warn().Msg("session expired, re-authenticating")
			sess, aerr := c.auth.reconnect(ctx)
			if aerr != nil {
				return queryPage{}, aerr
			}
			c.sess.Replace(sess)
			// replay does not count against the retry budget
			continue

		case perr.IsTransient(err):
			remaining--
			if remaining == 0 {
				break
			}
			c.log.Warn().Err(err).Dur("backoff", backoff).Msg("transient query failure, retrying")
			select {
			case <-ctx.Done():
				return queryPage{}, ctx.Err()
			default:
			}
			c.sleep(backoff)
			backoff *= 2

		default:
			return queryPage{}, err
		}

		if remaining == 0 {
			break
		}
	}
	return queryPage{}, perr.Wrapf(
		lastErr, perr.ErrorCodeUnavailable, "query failed after %d attempts", c.opts.MaxRetries,
	)
}

// doGET issues one authenticated request against the current session
func (c *Client) doGET(ctx context.Context, path string) (queryPage, error) {
	sess := c.sess.Current()
	if sess == nil {
		return queryPage{}, perr.Authf("not connected")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sess.InstanceURL+path, nil)
	if err != nil {
		return queryPage{}, perr.Wrap(err, perr.ErrorCodeUnknown, "request build failed")
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return queryPage{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "query request failed")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return queryPage{}, perr.Newf(
			perr.FromHTTPStatus(resp.StatusCode), "query status %d body %s", resp.StatusCode, string(body),
		)
	}

	var page queryPage
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return queryPage{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "response read failed")
	}
	if err := json.Unmarshal(b, &page); err != nil {
		return queryPage{}, perr.Wrap(err, perr.ErrorCodeJSON, "response decode failed")
	}
	return page, nil
}

// drainAndClose keeps connections reusable
func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	return rc.Close()
}
