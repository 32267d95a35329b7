package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// allowList holds the networks allowed to read the docs. Bare addresses are
// stored as single-host prefixes; unparsable entries are ignored.
type allowList []netip.Prefix

func parseAllowList(entries []string) allowList {
	var out allowList
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
		}
	}
	return out
}

func (l allowList) permits(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// SwaggerProtection gates the documentation routes. Disabled docs are a 404,
// callers outside a configured allow list get a 403, and RequireAuth puts
// the JWT check in front.
func SwaggerProtection(cfg config.SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		switch {
		case !cfg.Enabled:
			Abort(c, http.StatusNotFound, dto.NewHTTPError(shared.KindNotFound, dto.ErrCodeDocsNotAvailable,
				"API documentation is not available"))
			return
		case restricted && !allowed.permits(c.ClientIP()):
			Abort(c, http.StatusForbidden, dto.NewHTTPError(shared.KindForbidden, dto.ErrCodeDocsAccessDenied,
				"Access to API documentation is restricted"))
			return
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			if jwtMiddleware(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}
