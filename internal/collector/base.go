package collector

import (
	"context"
	"fmt"
	"net/http"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/pkg/fetcher"
	"banksentinel/pkg/logger"
)

// baseCollector carries the static declaration and the shared fetch path for
// the bundled JSON-feed collectors.
type baseCollector struct {
	name      string
	tier      model.TrustTier
	frequency int
	url       string
	useCache  bool
	fetcher   fetcher.Fetcher
	log       *logger.Logger
}

func (b *baseCollector) SourceName() string {
	return b.name
}

func (b *baseCollector) TrustTier() model.TrustTier {
	return b.tier
}

func (b *baseCollector) FrequencyMinutes() int {
	return b.frequency
}

// fetchFeed pulls the whole feed as a single raw item; splitting into
// entries is the parser's job.
func (b *baseCollector) fetchFeed(ctx context.Context) ([]dto.RawItem, error) {
	resp, err := b.fetcher.Fetch(ctx, fetcher.Request{
		URL:      b.url,
		Method:   http.MethodGet,
		UseCache: b.useCache,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", b.url, resp.Status)
	}

	return []dto.RawItem{{
		Data:      resp.Content,
		FetchedAt: resp.FetchedAt,
		FromCache: resp.FromCache,
	}}, nil
}
