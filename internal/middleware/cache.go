package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaKey      = "attendance.meta"
	metaStartKey = "attendance.meta.start"

	// MetaCacheHit flags summary and stats payloads served from Redis.
	MetaCacheHit = "cache_hit"
	// MetaProcessingTime is the elapsed handler time in milliseconds when the meta was extracted.
	MetaProcessingTime = "processing_time_ms"
)

// WithResponseMeta starts the per-request meta map consumed by the attendance handlers.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Set(metaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the aggregate in the response came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, MetaCacheHit, hit)
}

// SetMeta stores an arbitrary meta entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta := metaMap(c)
	if meta == nil {
		meta = map[string]interface{}{}
		c.Set(metaKey, meta)
	}
	meta[key] = value
}

// ExtractMeta returns a copy of the collected meta, stamped with the processing time
// when WithResponseMeta is installed. Nil means nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := metaMap(c)
	if meta == nil {
		return nil
	}
	out := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if raw, ok := c.Get(metaStartKey); ok {
		if start, ok := raw.(time.Time); ok {
			out[MetaProcessingTime] = time.Since(start).Milliseconds()
		}
	}
	return out
}

func metaMap(c *gin.Context) map[string]interface{} {
	raw, ok := c.Get(metaKey)
	if !ok {
		return nil
	}
	meta, _ := raw.(map[string]interface{})
	return meta
}
