package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"khrental/internal/domain"
	"khrental/internal/pkg/i18n"
	"khrental/internal/service/lifecycle"
)

// RequestContext copies per-request details onto the user context: caller
// address and agent for the audit trail, the preferred locale, and the
// If-Match version when one is sent.
func RequestContext(defaultLocale string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		ctx = lifecycle.WithRequestMeta(ctx, domain.RequestMeta{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		})
		ctx = i18n.WithLocale(ctx, preferredLocale(c.Get(fiber.HeaderAcceptLanguage), defaultLocale))

		if raw := c.Get(fiber.HeaderIfMatch); raw != "" {
			version, err := strconv.ParseInt(strings.Trim(strings.TrimPrefix(raw, "W/"), `"`), 10, 64)
			if err != nil {
				return BadRequest("If-Match must be a request version")
			}
			ctx = lifecycle.WithExpectedVersion(ctx, version)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// preferredLocale takes the primary tag of the first Accept-Language entry.
func preferredLocale(header, fallback string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	tag, _, _ := strings.Cut(strings.TrimSpace(first), "-")
	tag = strings.ToLower(tag)
	if tag == "" || tag == "*" {
		return fallback
	}
	return tag
}
