package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"texnomart/pkg/metrics"
)

type PageCacheTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	cache  *RedisPageCache
}

func TestPageCacheSuite(t *testing.T) {
	suite.Run(t, new(PageCacheTestSuite))
}

func (s *PageCacheTestSuite) SetupSuite() {
	var err error
	s.mr, err = miniredis.Run()
	s.Require().NoError(err)

	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.cache = NewRedisPageCache(s.client)
}

func (s *PageCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.mr.Close()
}

func (s *PageCacheTestSuite) SetupTest() {
	s.mr.FlushAll()
}

func (s *PageCacheTestSuite) TestGetPage_Miss() {
	body, found, err := s.cache.GetPage(context.Background(), "GET:/categories/:u:anon")

	s.NoError(err)
	s.False(found)
	s.Nil(body)
}

func (s *PageCacheTestSuite) TestSetPage_ThenGet() {
	ctx := context.Background()
	key := "GET:/comments/:u:anon"

	s.Require().NoError(s.cache.SetPage(ctx, key, []byte(`{"count":0}`), 10*time.Second))

	body, found, err := s.cache.GetPage(ctx, key)
	s.NoError(err)
	s.True(found)
	s.JSONEq(`{"count":0}`, string(body))
	s.Equal(10*time.Second, s.mr.TTL(pageCacheKeyPrefix+key))
}

func (s *PageCacheTestSuite) TestSetPage_Expires() {
	ctx := context.Background()
	key := "GET:/:u:1"

	s.Require().NoError(s.cache.SetPage(ctx, key, []byte(`[]`), 10*time.Second))
	s.mr.FastForward(11 * time.Second)

	_, found, err := s.cache.GetPage(ctx, key)
	s.NoError(err)
	s.False(found)
}

func cacheCounter(s *PageCacheTestSuite, hit bool) float64 {
	c := metrics.RedisCacheMisses.WithLabelValues(cacheServiceName, pageCacheKeyPrefix)
	if hit {
		c = metrics.RedisCacheHits.WithLabelValues(cacheServiceName, pageCacheKeyPrefix)
	}
	var m dto.Metric
	s.Require().NoError(c.Write(&m))
	return m.GetCounter().GetValue()
}

func (s *PageCacheTestSuite) TestGetPage_RecordsHitAndMiss() {
	ctx := context.Background()
	key := "GET:/products/:u:anon"
	hits, misses := cacheCounter(s, true), cacheCounter(s, false)

	// промах
	_, _, err := s.cache.GetPage(ctx, key)
	s.Require().NoError(err)
	s.Equal(misses+1, cacheCounter(s, false))
	s.Equal(hits, cacheCounter(s, true))

	// попадание
	s.Require().NoError(s.cache.SetPage(ctx, key, []byte(`[]`), time.Minute))
	_, found, err := s.cache.GetPage(ctx, key)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(hits+1, cacheCounter(s, true))
}
