package archive

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/log"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrBulkFailed = errors.New("bulk request failed")
)

const persistAttempts = 3

const eventMapping = `{
	"mappings": {
		"properties": {
			"id":         {"type": "keyword"},
			"sequence":   {"type": "long"},
			"type":       {"type": "keyword"},
			"seller":     {"type": "keyword"},
			"buyer":      {"type": "keyword"},
			"collection": {"type": "keyword"},
			"tokenId":    {"type": "keyword"},
			"price":      {"type": "keyword"},
			"value":      {"type": "keyword"},
			"time":       {"type": "date"}
		}
	}
}`

// Archive buffers committed marketplace events and bulk indexes them into Elasticsearch.
type Archive interface {
	InstallMapping(ctx context.Context) error
	Add(e entity.Event)
	Pending() int
	Persist(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type Config struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	Index            string
	BulkPersistCount int
}

type archive struct {
	client    *elastic.Client
	requests  *cache.Cache
	index     string
	bulkCount int
	mu        sync.Mutex
}

func New(config Config) (Archive, error) {
	client, err := newClient(config)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Archive: Failed to create client")
		return nil, err
	}

	return NewWithClient(client, config.Index, config.BulkPersistCount), nil
}

func NewWithClient(client *elastic.Client, index string, bulkCount int) Archive {
	if bulkCount <= 0 {
		bulkCount = 300
	}
	return &archive{
		client:    client,
		requests:  cache.New(cache.NoExpiration, 0),
		index:     index,
		bulkCount: bulkCount,
	}
}

func newClient(config Config) (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(config.Hosts...),
		elastic.SetSniff(config.Sniff),
		elastic.SetHealthcheck(config.HealthCheck),
	}

	if config.Debug {
		opts = append(opts, elastic.SetTraceLog(log.ElasticLogger{}))
	}

	if config.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(config.Username, config.Password))
	}

	return elastic.NewClient(opts...)
}

func (a *archive) InstallMapping(ctx context.Context) error {
	exists, err := a.client.IndexExists(a.index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	createIndex, err := a.client.CreateIndex(a.index).BodyString(eventMapping).Do(ctx)
	if err != nil {
		return err
	}
	if createIndex.Acknowledged {
		zap.S().Infof("Archive: Created index %s", a.index)
	}

	return nil
}

// Add buffers e until the next Persist. Events are keyed by id so a repeated event
// is indexed once.
func (a *archive) Add(e entity.Event) {
	zap.L().With(zap.String("slug", e.Slug())).Debug("Archive: AddIndexRequest")
	a.requests.Set(e.Slug(), e, cache.NoExpiration)
}

func (a *archive) Pending() int {
	return a.requests.ItemCount()
}

// Persist flushes the buffer in bulk requests. Events of a failed bulk stay buffered.
func (a *archive) Persist(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	persisted := 0
	batch := make([]entity.Event, 0, a.bulkCount)
	for _, item := range a.requests.Items() {
		batch = append(batch, item.Object.(entity.Event))
		if len(batch) >= a.bulkCount {
			if err := a.persist(ctx, batch); err != nil {
				return persisted, err
			}
			persisted += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) != 0 {
		if err := a.persist(ctx, batch); err != nil {
			return persisted, err
		}
		persisted += len(batch)
	}

	return persisted, nil
}

func (a *archive) persist(ctx context.Context, events []entity.Event) error {
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		if err = a.bulk(ctx, events); err == nil {
			for _, e := range events {
				a.requests.Delete(e.Slug())
			}
			zap.S().Debugf("Archive: Persisted %d events", len(events))
			return nil
		}

		zap.L().With(zap.Error(err), zap.Int("attempt", attempt)).Warn("Archive: Failed to persist events")
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return err
}

func (a *archive) bulk(ctx context.Context, events []entity.Event) error {
	bulk := a.client.Bulk()
	for _, e := range events {
		bulk.Add(elastic.NewBulkIndexRequest().Index(a.index).Id(e.Slug()).Doc(e))
	}

	response, err := bulk.Do(ctx)
	if err != nil {
		return err
	}

	if response.Errors {
		for _, failed := range response.Failed() {
			zap.L().With(
				zap.Any("error", failed.Error),
				zap.String("index", failed.Index),
				zap.String("id", failed.Id),
			).Error("Archive: Failed to persist event")
		}
		return ErrBulkFailed
	}

	return nil
}

// Run persists the buffer every interval until ctx is done, then flushes once more.
func (a *archive) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := a.Persist(context.Background()); err != nil {
				zap.L().With(zap.Error(err)).Error("Archive: Final persist failed")
			}
			return
		case <-ticker.C:
			if a.Pending() == 0 {
				continue
			}
			start := time.Now()
			actions, err := a.Persist(ctx)
			if err != nil {
				zap.L().With(zap.Error(err)).Error("Archive: Persist failed")
				continue
			}
			zap.L().With(zap.Duration("elapsed", time.Since(start)), zap.Int("actions", actions)).
				Info("Archive: Persisting data")
		}
	}
}
