package gateway

//go:generate mockgen -source=provider.go -destination=mocks/mocks.go -package=mocks Provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"securedeal/internal/validation/gateway/mocks"
	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
	"securedeal/pkg/requestcontext"
)

type GatewaySuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	provider *mocks.MockProvider
	delays   []time.Duration
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.provider = mocks.NewMockProvider(s.ctrl)
	s.delays = nil
}

func (s *GatewaySuite) newGateway(cache Cache) *Gateway {
	cfg := models.DefaultEngineConfig()
	g := New(
		map[id.SourceKind]Provider{id.SourceCompanyRegistry: s.provider},
		cache, cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
	)
	return g.WithSleeper(func(_ context.Context, d time.Duration) error {
		s.delays = append(s.delays, d)
		return nil
	})
}

// ============================================================
// Cache behaviour
// ============================================================

func (s *GatewaySuite) TestCacheHitSkipsProvider() {
	cache := NewMemoryCache()
	g := s.newGateway(cache)

	fields := models.Fields{"company_name": "ACME s.r.o."}
	s.provider.EXPECT().Fetch(gomock.Any(), "12345678").Return(fields, nil).Times(1)

	first := g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.Require().False(first.Degraded)
	s.False(first.FromCache)
	s.Equal(fields, first.Fields)

	second := g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.Require().False(second.Degraded)
	s.True(second.FromCache)
	s.Equal(fields, second.Fields)
}

func (s *GatewaySuite) TestExpiredEntryRefetches() {
	now := time.Now()
	cache := NewMemoryCache().WithClock(func() time.Time { return now })
	g := s.newGateway(cache)

	s.provider.EXPECT().Fetch(gomock.Any(), "12345678").
		Return(models.Fields{"company_name": "ACME"}, nil).Times(2)

	g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	now = now.Add(25 * time.Hour) // past the 24h company registry ttl
	res := g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.False(res.FromCache)
}

func (s *GatewaySuite) TestReadOnlyGatewayReadsButNeverWrites() {
	cache := NewMemoryCache()
	g := s.newGateway(cache).ReadOnly()

	fields := models.Fields{"company_name": "ACME"}
	s.provider.EXPECT().Fetch(gomock.Any(), "12345678").Return(fields, nil).Times(2)

	// misses go to the provider and leave no entry behind
	first := g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.False(first.FromCache)
	second := g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.False(second.FromCache)

	// entries warmed elsewhere are still served
	err := cache.Set(context.Background(), id.SourceCompanyRegistry, "12345678", fields, time.Hour)
	s.Require().NoError(err)
	third := g.Fetch(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.True(third.FromCache)
	s.Equal(fields, third.Fields)
}

func (s *GatewaySuite) TestCacheHonoursPinnedRequestTime() {
	cache := NewMemoryCache()
	fields := models.Fields{"company_name": "ACME"}

	err := cache.Set(context.Background(), id.SourceCompanyRegistry, "12345678", fields, time.Hour)
	s.Require().NoError(err)

	// a request pinned past the ttl sees the entry as expired
	stale := requestcontext.WithTime(context.Background(), time.Now().Add(2*time.Hour))
	_, ok, err := cache.Get(stale, id.SourceCompanyRegistry, "12345678")
	s.Require().NoError(err)
	s.False(ok)

	// an unpinned request falls back to the wall clock and still hits
	got, ok, err := cache.Get(context.Background(), id.SourceCompanyRegistry, "12345678")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(fields, got)
}

// ============================================================
// Retry and fallback
// ============================================================

func (s *GatewaySuite) TestRetriesFollowBackoffSchedule() {
	g := s.newGateway(NopCache{})

	transient := NewProviderError(id.SourceCompanyRegistry, ErrUnavailable, errors.New("503"))
	gomock.InOrder(
		s.provider.EXPECT().Fetch(gomock.Any(), "k").Return(nil, transient),
		s.provider.EXPECT().Fetch(gomock.Any(), "k").Return(nil, transient),
		s.provider.EXPECT().Fetch(gomock.Any(), "k").Return(models.Fields{"x": "1"}, nil),
	)

	res := g.Fetch(context.Background(), id.SourceCompanyRegistry, "k")
	s.Require().False(res.Degraded)
	s.Equal(3, res.Attempts)
	s.Equal([]time.Duration{time.Second, 2 * time.Second}, s.delays)
}

func (s *GatewaySuite) TestExhaustedRetriesDegrade() {
	g := s.newGateway(NopCache{})

	transient := NewProviderError(id.SourceCompanyRegistry, ErrTimeout, errors.New("deadline"))
	s.provider.EXPECT().Fetch(gomock.Any(), "k").Return(nil, transient).Times(3)

	res := g.Fetch(context.Background(), id.SourceCompanyRegistry, "k")
	s.Require().True(res.Degraded)
	s.Equal(models.StatusOrange, res.FallbackStatus)
	s.ErrorIs(res.Err, transient)
	s.Len(s.delays, 2)
}

func (s *GatewaySuite) TestNonRetryableFailsFast() {
	g := s.newGateway(NopCache{})

	malformed := NewProviderError(id.SourceCompanyRegistry, ErrInvalidResponse, errors.New("bad json"))
	s.provider.EXPECT().Fetch(gomock.Any(), "k").Return(nil, malformed).Times(1)

	res := g.Fetch(context.Background(), id.SourceCompanyRegistry, "k")
	s.Require().True(res.Degraded)
	s.Empty(s.delays)
}

func (s *GatewaySuite) TestUnknownSourceDegrades() {
	g := s.newGateway(NopCache{})

	res := g.Fetch(context.Background(), id.SourceBlacklist, "k")
	s.Require().True(res.Degraded)
	s.Equal(models.StatusOrange, res.FallbackStatus)
}

func (s *GatewaySuite) TestRetryableClassification() {
	s.True(Retryable(NewProviderError(id.SourceVATRegistry, ErrTimeout, errors.New("x"))))
	s.True(Retryable(NewProviderError(id.SourceVATRegistry, ErrRateLimited, errors.New("x"))))
	s.False(Retryable(NewProviderError(id.SourceVATRegistry, ErrInvalidResponse, errors.New("x"))))
	s.False(Retryable(errors.New("plain")))
}
