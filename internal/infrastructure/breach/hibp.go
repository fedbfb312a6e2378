// Package breach implements entity.BreachChecker against remote and local
// compromised-password sources.
package breach

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // SHA-1 is mandated by the range API, not used for security
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/oksasatya/auth-service/internal/domain/entity"
)

// DefaultEndpoint is the Pwned Passwords range API.
const DefaultEndpoint = "https://api.pwnedpasswords.com/range"

const prefixLen = 5

// HIBPClient queries the Pwned Passwords k-anonymity range API.
// Only the first five hex characters of the SHA-1 digest leave the process.
type HIBPClient struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
	userAgent  string
}

// HIBPOption configures an HIBPClient.
type HIBPOption func(*HIBPClient)

// WithEndpoint overrides the range API base URL.
func WithEndpoint(endpoint string) HIBPOption {
	return func(c *HIBPClient) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithRateLimit caps outbound lookups at perSecond, waiting on ctx when exhausted.
// Non-positive values disable the limiter.
func WithRateLimit(perSecond float64, burst int) HIBPOption {
	return func(c *HIBPClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header sent with each lookup.
func WithUserAgent(ua string) HIBPOption {
	return func(c *HIBPClient) { c.userAgent = ua }
}

// NewHIBPClient builds a client. A nil httpClient gets a 5s timeout client.
func NewHIBPClient(httpClient *http.Client, opts ...HIBPOption) *HIBPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	c := &HIBPClient{
		httpClient: httpClient,
		endpoint:   DefaultEndpoint,
		userAgent:  "auth-service",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBreached reports whether password appears in the corpus with a non-zero count.
// Padding entries (count 0) are ignored.
func (c *HIBPClient) IsBreached(ctx context.Context, password string) (bool, error) {
	digest := sha1Hex(password)
	prefix, suffix := digest[:prefixLen], digest[prefixLen:]

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("breach check rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("build range request: %w", err)
	}
	req.Header.Set("Add-Padding", "true")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("range request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("range request: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		hashSuffix, countStr, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(hashSuffix, suffix) {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return false, fmt.Errorf("range response: bad count %q: %w", countStr, err)
		}
		return count > 0, nil
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read range response: %w", err)
	}
	return false, nil
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec // see import
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

var _ entity.BreachChecker = (*HIBPClient)(nil)
