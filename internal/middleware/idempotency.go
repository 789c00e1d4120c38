package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-hrms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader   = "Idempotency-Key"
	IdempotencyReplayed = "Idempotent-Replayed"

	idempotencyLockTTL   = 30 * time.Second
	idempotencyResultTTL = 24 * time.Hour
)

var ErrIdempotencyInProgress = apperror.New(
	apperror.CodeConflict,
	"A request with this Idempotency-Key is still being processed",
	http.StatusConflict,
)

var ErrIdempotencyKeyReused = apperror.New(
	apperror.CodeConflict,
	"This Idempotency-Key was already used with a different request body",
	http.StatusUnprocessableEntity,
)

type cachedResponse struct {
	Status   int             `json:"status"`
	BodyHash string          `json:"body_hash,omitempty"`
	Body     json.RawMessage `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func IdempotencyCacheKey(path, employeeID, key string) string {
	return fmt.Sprintf("idemp:%s:%s:%s", path, employeeID, key)
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key and body from the same caller. A different body under
// a used key is rejected. Only 2xx responses are stored.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	logger := zap.L().Named("middleware.idempotency")
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := IdempotencyCacheKey(c.FullPath(), c.GetString(ContextEmployeeID), idempKey)
		lockKey := cacheKey + ":lock"

		bodyHash, err := hashRequestBody(c.Request)
		if err != nil {
			abortWithError(c, apperror.Validation([]string{"Request body could not be read"}))
			return
		}

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached cachedResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				if cached.BodyHash != "" && cached.BodyHash != bodyHash {
					abortWithError(c, ErrIdempotencyKeyReused)
					return
				}
				c.Header(IdempotencyReplayed, "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock unavailable, continuing", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			abortWithError(c, ErrIdempotencyInProgress)
			return
		}
		defer rdb.Del(ctx, lockKey)

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || writer.body.Len() == 0 {
			return
		}

		payload, err := json.Marshal(cachedResponse{Status: status, BodyHash: bodyHash, Body: writer.body.Bytes()})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, cacheKey, payload, idempotencyResultTTL).Err(); err != nil {
			logger.Warn("idempotency store failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}

// hashRequestBody returns the hex sha256 of the body and leaves the body
// readable for the handler.
func hashRequestBody(req *http.Request) (string, error) {
	if req.Body == nil {
		return hex.EncodeToString(sha256.New().Sum(nil)), nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return "", err
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
