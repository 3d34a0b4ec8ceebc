package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"stark-ops.backend/pkg/redis"
)

const (
	// IdempotencyHeader is the request header carrying the client-chosen key
	IdempotencyHeader = "Idempotency-Key"
	// idempotencyLock bounds how long a key stays reserved while the first
	// request is still in flight
	idempotencyLock = 30 * time.Second
	// idempotencyRetention is how long a successful response is replayable
	idempotencyRetention = 24 * time.Hour

	processingSentinel = "processing"
)

// Redis operations as package variables for testing
var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

// idempotencyWriter tees the response body so a successful response can be
// stored for replay
type idempotencyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware deduplicates submission requests that carry an
// Idempotency-Key header. The first request with a given key reserves it,
// and its successful response body is stored and replayed to retries.
// Retries that arrive while the first request is still running get a 409.
// Requests without the header pass through untouched.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storageKey := fmt.Sprintf("idempotency:%s:%s", c.GetString(KeyNameKey), key)

		val, err := redisGet(ctx, storageKey)
		if err == nil {
			if val == processingSentinel {
				conflict(c)
				return
			}
			c.Header("Content-Type", "application/json")
			c.Header("X-Idempotency-Hit", "true")
			c.String(http.StatusOK, val)
			c.Abort()
			return
		}
		if !errors.Is(err, goredis.Nil) {
			// Redis unavailable: process the request without the guard
			c.Next()
			return
		}

		set, err := redisSetNX(ctx, storageKey, processingSentinel, idempotencyLock)
		if err != nil {
			c.Next()
			return
		}
		if !set {
			conflict(c)
			return
		}

		writer := &idempotencyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		// Only successful responses are worth replaying; anything else
		// releases the key so the client can retry
		status := writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			_ = redisSet(ctx, storageKey, writer.body.String(), idempotencyRetention)
		} else {
			_ = redisDel(ctx, storageKey)
		}
	}
}

func conflict(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "IDEMPOTENCY_CONFLICT",
			"message": "A request with this idempotency key is already in progress",
		},
	})
}
