package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const registerRatePrefix = "rl:register:"

// RegisterRateLimit caps registration attempts per phone number per minute,
// falling back to the client IP when the body carries no number. Requests the
// handler rejects as malformed (400) are not counted. Without Redis it is a
// no-op; cache errors fail open.
func RegisterRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		ctx := c.UserContext()
		key := registerRatePrefix + registerSubject(c)

		cnt, err := cache.Get(ctx, key).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return c.Next()
		}
		if cnt >= int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "Too many registration attempts, try again later")
		}

		err = c.Next()
		if badRequest(c, err) {
			return err
		}
		if n, incrErr := cache.Incr(ctx, key).Result(); incrErr == nil && n == 1 {
			cache.Expire(ctx, key, time.Minute)
		}
		return err
	}
}

func registerSubject(c *fiber.Ctx) string {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	_ = c.BodyParser(&req)
	if phone := normalizePhone(req.PhoneNumber); phone != "" {
		return phone
	}
	return c.IP()
}

// normalizePhone keeps the digits of a phone number and a leading plus, so
// "+1 (555) 123-4567" and "+15551234567" share one counter.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if out := b.String(); strings.Trim(out, "+") != "" {
		return out
	}
	return ""
}

func badRequest(c *fiber.Ctx, err error) bool {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code == http.StatusBadRequest
	}
	return err == nil && c.Response().StatusCode() == http.StatusBadRequest
}
