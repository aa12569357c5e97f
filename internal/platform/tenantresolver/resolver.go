// Package tenantresolver implements spec §4.6: resolving which tenant a
// request belongs to, in the fixed priority order header > subdomain >
// JWT claim, with mismatch detection across whichever signals are
// present. Grounded on
// original_source/app/shared/middleware/tenant_resolver.py (same
// resolution order, same reserved-subdomain check) and the Cache
// component for the 5-minute subdomain lookup cache.
package tenantresolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/platform/cache"
	"github.com/taskforge/core-api/internal/platform/textnorm"
)

// subdomainCacheTTL is the 5-minute window from spec §4.6.
const subdomainCacheTTL = 5 * time.Minute

// Resolver resolves a request's tenant id from the three signals spec
// §4.6 names, in priority order.
type Resolver struct {
	tenants   repository.TenantRepository
	cache     cache.Cache
	apexHost  string // e.g. "taskforge.io"; from TASKFORGE_APEX_HOST
}

// NewResolver builds a Resolver. apexHost is the bare domain that
// subdomains are matched against ({sub}.{apexHost}); it is an explicit
// configuration value because spec §9 leaves "what counts as the apex
// host" as an open question this implementation resolves concretely.
func NewResolver(tenants repository.TenantRepository, c cache.Cache, apexHost string) *Resolver {
	return &Resolver{tenants: tenants, cache: c, apexHost: textnorm.FoldHost(apexHost)}
}

// Signals are the raw, unvalidated inputs the middleware extracts from
// one request before calling Resolve.
type Signals struct {
	HeaderTenantID string // X-Tenant-ID, expected to be a UUID
	Host           string // request Host, checked against {sub}.{apexHost}
	ClaimTenantID  string // tenant_id claim from an already-verified access token, if any
	// BodyTenantID is the tenant_id field of a /auth/register payload
	// (spec §6), the one endpoint with no header/claim signal to rely
	// on before an account exists. It is treated as equal priority to
	// the header — both are caller-supplied, unauthenticated claims —
	// so a request carrying both is rejected on mismatch exactly like
	// a header/subdomain disagreement would be.
	BodyTenantID string
}

// Resolve applies the priority order and mismatch rule: if more than one
// signal is present and they disagree, the request is rejected with
// domain.ErrTenantMismatch (spec §9's resolution of this open question).
func (r *Resolver) Resolve(ctx context.Context, signals Signals) (*entity.Tenant, error) {
	var candidates []string

	if id := strings.TrimSpace(signals.HeaderTenantID); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, domain.NewError(domain.CodeValidationError, "X-Tenant-ID header is not a valid UUID")
		}
		candidates = append(candidates, id)
	}

	if id := strings.TrimSpace(signals.BodyTenantID); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, domain.NewError(domain.CodeValidationError, "tenant_id is not a valid UUID")
		}
		candidates = append(candidates, id)
	}

	if sub, ok := r.subdomainOf(signals.Host); ok {
		tenantID, err := r.resolveSubdomain(ctx, sub)
		if err != nil {
			return nil, err
		}
		if tenantID != "" {
			candidates = append(candidates, tenantID)
		}
	}

	if id := strings.TrimSpace(signals.ClaimTenantID); id != "" {
		candidates = append(candidates, id)
	}

	if len(candidates) == 0 {
		return nil, domain.ErrMissingTenant
	}
	first := candidates[0]
	for _, c := range candidates[1:] {
		if c != first {
			return nil, domain.ErrTenantMismatch
		}
	}

	tenant, err := r.tenants.GetByID(ctx, first)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantInactive
	}
	return tenant, nil
}

// subdomainOf extracts sub from host matching "{sub}.{apexHost}",
// rejecting reserved subdomains outright.
func (r *Resolver) subdomainOf(host string) (string, bool) {
	host = textnorm.FoldHost(host)
	if host == "" || r.apexHost == "" {
		return "", false
	}
	// Strip a port, if present.
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	suffix := "." + r.apexHost
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	sub := strings.TrimSuffix(host, suffix)
	if sub == "" || strings.Contains(sub, ".") || entity.ReservedSubdomains[sub] {
		return "", false
	}
	return sub, true
}

func (r *Resolver) resolveSubdomain(ctx context.Context, subdomain string) (string, error) {
	key := cache.SubdomainKey(subdomain)
	if cached, ok := r.cache.Get(ctx, key); ok {
		var tenantID string
		if err := json.Unmarshal(cached, &tenantID); err == nil {
			return tenantID, nil
		}
	}

	tenant, err := r.tenants.GetBySubdomain(ctx, subdomain)
	if err != nil {
		if err == domain.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("resolve subdomain: %w", err)
	}

	if encoded, err := json.Marshal(tenant.ID); err == nil {
		r.cache.Set(ctx, key, encoded, subdomainCacheTTL)
	}
	return tenant.ID, nil
}
