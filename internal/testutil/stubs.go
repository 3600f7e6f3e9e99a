// Package testutil provides shared test doubles and fixtures for usecase and handler tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"time"
)

// TinyPNG encodes a w by h opaque PNG.
func TinyPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// NopLogger discards everything and records error lines for assertions.
type NopLogger struct {
	mu     sync.Mutex
	Errors []string
}

func (l *NopLogger) Debugf(string, ...interface{}) {}
func (l *NopLogger) Infof(string, ...interface{}) {}
func (l *NopLogger) Warnf(string, ...interface{}) {}
func (l *NopLogger) Warningf(string, ...interface{}) {}
func (l *NopLogger) Fatalf(string, ...interface{}) {}

func (l *NopLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, fmt.Sprintf(format, args...))
}

// ConfigStub satisfies the usecase config provider with fixed values.
type ConfigStub struct {
	MaxUploadBytes    int64
	AuditBatchSize    int
	AccessTokenExpiry time.Duration
	SearchResultLimit int
}

// NewConfigStub returns the production defaults.
func NewConfigStub() *ConfigStub {
	return &ConfigStub{
		MaxUploadBytes:    10 << 20,
		AuditBatchSize:    200,
		AccessTokenExpiry: 24 * time.Hour,
		SearchResultLimit: 10,
	}
}

func (c *ConfigStub) GetMaxUploadBytes() int64 { return c.MaxUploadBytes }
func (c *ConfigStub) GetAuditBatchSize() int { return c.AuditBatchSize }
func (c *ConfigStub) GetAccessTokenExpiry() time.Duration { return c.AccessTokenExpiry }
func (c *ConfigStub) GetSearchResultLimit() int { return c.SearchResultLimit }

// IDGen hands out predictable ids.
type IDGen struct {
	n atomic.Int64
}

// NewObjectID returns 24 hex characters derived from a counter.
func (g *IDGen) NewObjectID() string {
	return fmt.Sprintf("%024x", 0xabc000+g.n.Add(1))
}

func (g *IDGen) NewUUID() string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.n.Add(1))
}
