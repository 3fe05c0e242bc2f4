package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveService_RejectsNonHTTPURL(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{}
	svc := NewResolveService(resolver, time.Minute, nil)

	for _, raw := range []string{"", "   ", "ftp://example.com/x", "/soccer/1", "not a url"} {
		got := svc.Resolve(context.Background(), raw)
		assert.False(t, got.OK, raw)
		assert.Equal(t, "detail url must be an absolute http(s) url", got.Message, raw)
	}
	assert.Zero(t, resolver.hits.Load())
}

func TestResolveService_Found(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{embeds: map[string]string{
		"https://streameast.gl/soccer/1": "https://gooz.aapmains.net/new-stream-embed/1",
	}}
	svc := NewResolveService(resolver, time.Minute, nil)

	got := svc.Resolve(context.Background(), " https://streameast.gl/soccer/1 ")
	assert.Equal(t, ResolveResult{OK: true, EmbedURL: "https://gooz.aapmains.net/new-stream-embed/1", Strategy: "static"}, got)
}

func TestResolveService_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{embeds: map[string]string{}}
	svc := NewResolveService(resolver, time.Minute, nil)

	for range 2 {
		got := svc.Resolve(context.Background(), "https://streameast.gl/soccer/404")
		assert.False(t, got.OK)
		assert.Equal(t, "no embeddable stream found", got.Message)
	}
	assert.EqualValues(t, 2, resolver.hits.Load())
}

func TestResolveService_CachesSuccessAcrossConcurrentCallers(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{embeds: map[string]string{
		"https://streameast.gl/soccer/7": "https://player.example.net/embed/7",
	}}
	svc := NewResolveService(resolver, time.Minute, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := svc.Resolve(context.Background(), "https://streameast.gl/soccer/7")
			assert.True(t, got.OK)
		}()
	}
	wg.Wait()

	hits := resolver.hits.Load()
	assert.Positive(t, hits)
	svc.Resolve(context.Background(), "https://streameast.gl/soccer/7")
	assert.Equal(t, hits, resolver.hits.Load())
}
