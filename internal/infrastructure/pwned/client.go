// Package pwned implements password.BreachChecker against a
// pwnedpasswords-shaped k-anonymity range API, grounded on
// original_source/app/shared/security/password.py's
// check_compromised_password (SHA-1 prefix/suffix split, "Add-Padding"
// header, timeout, fail-open on any transport error) translated from
// httpx.AsyncClient to net/http.
package pwned

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskforge/core-api/internal/platform/security/password"
)

var _ password.BreachChecker = (*Client)(nil)

// Client queries a pwnedpasswords-shaped range endpoint. It never
// transmits more than the first five hex characters of the password's
// SHA-1 digest, per the k-anonymity model spec §4.4 requires.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New builds a Client. timeout should come from
// config.Auth.BreachOracleTimeoutSeconds (spec §6 defaults to 2s).
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// IsCompromised implements password.BreachChecker. oracleReachable is
// false whenever the request failed or returned a non-200 status, which
// the caller (password.Service.CheckBreach) uses to decide fail-open vs
// fail-closed per spec §9.
func (c *Client) IsCompromised(ctx context.Context, plain string) (compromised bool, oracleReachable bool, err error) {
	sum := sha1.Sum([]byte(plain))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/range/%s", c.baseURL, prefix), nil)
	if err != nil {
		return false, false, fmt.Errorf("build breach oracle request: %w", err)
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("breach oracle unreachable")
		return false, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("breach oracle returned non-200")
		return false, false, fmt.Errorf("breach oracle status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, false, fmt.Errorf("read breach oracle response: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		hashSuffix, _, found := strings.Cut(line, ":")
		if found && strings.EqualFold(hashSuffix, suffix) {
			return true, true, nil
		}
	}
	return false, true, nil
}
