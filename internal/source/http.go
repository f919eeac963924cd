package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Iron-Ham/roster/internal/errors"
	"github.com/Iron-Ham/roster/internal/logging"
	"github.com/Iron-Ham/roster/internal/user"
)

// DefaultBaseURL is the public random user endpoint.
const DefaultBaseURL = "https://random-data-api.com/api/users/random_user"

// DefaultTimeout bounds a single batch request.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent identifies roster to the remote service.
const DefaultUserAgent = "roster/1.0"

// maxBodyBytes caps how much of a response is read. A batch of 100 users is
// well under this.
const maxBodyBytes = 4 << 20

// Compile-time interface check.
var _ Source = (*HTTPSource)(nil)

// HTTPSource fetches users with GET <baseURL>?size=<count>.
type HTTPSource struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    *logging.Logger

	timeout    time.Duration
	timeoutSet bool
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithTimeout sets the HTTP client timeout. The source works on its own copy
// of the client, so a client passed with WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		s.timeout = d
		s.timeoutSet = true
	}
}

// WithHTTPClient sets the client requests are sent with. A nil client is
// ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *HTTPSource) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(s *HTTPSource) {
		s.logger = l
	}
}

// NewHTTPSource creates a source for baseURL. An empty baseURL uses DefaultBaseURL.
func NewHTTPSource(baseURL string, opts ...Option) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	s := &HTTPSource{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeoutSet {
		hc := *s.http
		hc.Timeout = s.timeout
		s.http = &hc
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	s.logger = s.logger.WithComponent("source")
	return s
}

// BaseURL returns the endpoint requests are sent to.
func (s *HTTPSource) BaseURL() string {
	return s.baseURL
}

// FetchBatch requests count users. The service answers with a JSON array,
// except that some deployments answer size=1 with a bare object; both shapes
// are accepted.
func (s *HTTPSource) FetchBatch(ctx context.Context, count int) (user.List, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}

	reqURL, err := s.batchURL(count)
	if err != nil {
		return nil, errors.NewNetworkError("build request url", err).WithURL(s.baseURL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewNetworkError("create request", err).WithURL(reqURL)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", s.userAgent)

	start := time.Now()
	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, requestError(ctx, err).WithURL(reqURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewNetworkError("read response", err).WithURL(reqURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewNetworkError(fmt.Sprintf("HTTP %d", resp.StatusCode), nil).
			WithURL(reqURL).
			WithStatusCode(resp.StatusCode)
	}

	users, err := DecodeUsers(body)
	if err != nil {
		return nil, errors.NewParseError("decode users", err).WithURL(reqURL).WithBody(body)
	}

	s.logger.Debug("fetched batch",
		"requested", count,
		"received", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if len(users) != count {
		s.logger.Warn("source returned unexpected batch size",
			"requested", count,
			"received", len(users),
		)
	}

	return users, nil
}

// requestError classifies a failed round trip. Timeouts wrap ErrTimeout so
// they stay retryable; cancellation wraps ErrCanceled and is logged quietly.
func requestError(ctx context.Context, err error) *errors.NetworkError {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return errors.NewNetworkError("request canceled", fmt.Errorf("%w: %w", errors.ErrCanceled, err)).
			WithSeverity(errors.SeverityDebug)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return errors.NewNetworkError("request timed out", fmt.Errorf("%w: %w", errors.ErrTimeout, err))
	default:
		return errors.NewNetworkError("request failed", err)
	}
}

func (s *HTTPSource) batchURL(count int) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("size", strconv.Itoa(count))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DecodeUsers decodes a response body that is either a JSON array of user
// objects or a single user object.
func DecodeUsers(body []byte) (user.List, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	switch trimmed[0] {
	case '[':
		var users user.List
		if err := json.Unmarshal(trimmed, &users); err != nil {
			return nil, err
		}
		if users == nil {
			users = user.List{}
		}
		return users, nil
	case '{':
		var u user.User
		if err := json.Unmarshal(trimmed, &u); err != nil {
			return nil, err
		}
		return user.List{u}, nil
	default:
		return nil, fmt.Errorf("expected a JSON array or object, got %q", trimmed[0])
	}
}
