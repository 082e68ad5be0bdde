package nasa

import (
	"context"
	"strconv"
	"strings"
	"time"

	"astrodeck/internal/common/cache"
	"astrodeck/internal/common/config"
	"astrodeck/internal/common/httpclient"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/metrics"
	"astrodeck/internal/common/resilience"
)

// Library is the caching facade in front of both NASA upstreams. A cache
// miss triggers a single retried fetch shared by all concurrent callers;
// terminal failures are stored as empty payloads so callers always get a
// usable value.
type Library struct {
	apod   *ApodClient
	images *ImageClient
	retry  config.RetryConfig
	log    logger.Logger

	apodCache  *cache.Memo[*Apod]
	imageCache *cache.Memo[*ImageSearch]
}

func NewLibrary(cfg config.NasaConfig, client *httpclient.Client, log logger.Logger) *Library {
	return &Library{
		apod:   NewApodClient(cfg.ApodBaseURL, cfg.APIKey, client),
		images: NewImageClient(cfg.ImagesBaseURL, client),
		retry:  cfg.Retry,
		log:    log,
		apodCache: cache.NewMemo[*Apod]("apod", cfg.ApodCache.MaxSize, cfg.ApodCache.TTL,
			func() *Apod { return &Apod{} }, log),
		imageCache: cache.NewMemo[*ImageSearch]("image_search", cfg.ImageCache.MaxSize, cfg.ImageCache.TTL,
			func() *ImageSearch { return &ImageSearch{} }, log),
	}
}

// Apod returns the picture of the day for date, cached by calendar date.
func (l *Library) Apod(ctx context.Context, date time.Time) (*Apod, error) {
	key := date.Format("2006-01-02")
	return l.apodCache.GetOrLoad(ctx, key, func(ctx context.Context) (*Apod, error) {
		return resilience.Do(ctx, l.policy("apod"), func(ctx context.Context) (*Apod, error) {
			return l.apod.Fetch(ctx, date)
		})
	})
}

// SearchImages returns library search results, cached by normalized query
// plus filters.
func (l *Library) SearchImages(ctx context.Context, query, mediaType string, yearStart, yearEnd int) (*ImageSearch, error) {
	key := searchKey(query, mediaType, yearStart, yearEnd)
	return l.imageCache.GetOrLoad(ctx, key, func(ctx context.Context) (*ImageSearch, error) {
		return resilience.Do(ctx, l.policy("image_search"), func(ctx context.Context) (*ImageSearch, error) {
			return l.images.Search(ctx, query, mediaType, yearStart, yearEnd)
		})
	})
}

func (l *Library) policy(operation string) resilience.Policy {
	p := resilience.PolicyFromConfig(l.retry)
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		metrics.UpstreamRetries.WithLabelValues(operation).Inc()
		l.log.Warn("retrying upstream call", map[string]interface{}{
			"operation": operation,
			"attempt":   attempt,
			"delay":     delay.String(),
			"error":     err.Error(),
		})
	}
	return p
}

// searchKey normalizes the query and encodes the filters so that
// equivalent searches land on the same cache entry. Unset filters encode
// as empty strings.
func searchKey(query, mediaType string, yearStart, yearEnd int) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(query)))
	b.WriteString("|mt=")
	b.WriteString(mediaType)
	b.WriteString("|y1=")
	if yearStart > 0 {
		b.WriteString(strconv.Itoa(yearStart))
	}
	b.WriteString("|y2=")
	if yearEnd > 0 {
		b.WriteString(strconv.Itoa(yearEnd))
	}
	return b.String()
}
