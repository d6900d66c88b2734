package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"securedeal/internal/validation/gateway"
)

type ProvidersSuite struct {
	suite.Suite
}

func TestProvidersSuite(t *testing.T) {
	suite.Run(t, new(ProvidersSuite))
}

func (s *ProvidersSuite) TestCompanyRegistryMapsRecord() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/economic-subjects/12345678", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ico": "12345678",
			"obchodniJmeno": "ACME s.r.o.",
			"dic": "CZ12345678",
			"datumVzniku": "2015-06-01",
			"sidlo": "Hlavní 12, Praha 1"
		}`))
	}))
	defer srv.Close()

	fields, err := NewCompanyRegistry(srv.URL, time.Second).Fetch(context.Background(), "12345678")
	s.Require().NoError(err)
	name, ok := fields.Value("company_name")
	s.True(ok)
	s.Equal("ACME s.r.o.", name)
	established, _ := fields.Value("established_on")
	s.Equal("2015-06-01", established)
}

func (s *ProvidersSuite) TestNotFoundIsEmptyRecord() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fields, err := NewCompanyRegistry(srv.URL, time.Second).Fetch(context.Background(), "99999999")
	s.Require().NoError(err)
	s.Empty(fields)
}

func (s *ProvidersSuite) TestServerErrorIsRetryable() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewVATRegistry(srv.URL, time.Second).Fetch(context.Background(), "CZ123")
	s.Require().Error(err)
	s.True(gateway.Retryable(err))
}

func (s *ProvidersSuite) TestMalformedResponseIsNotRetryable() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := NewVATRegistry(srv.URL, time.Second).Fetch(context.Background(), "CZ123")
	s.Require().Error(err)
	s.False(gateway.Retryable(err))
}

func (s *ProvidersSuite) TestBlacklist() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("subject") == "BAD TRADER" {
			w.Write([]byte(`{"listed": true, "reason": "fraud investigation"}`))
			return
		}
		w.Write([]byte(`{"listed": false}`))
	}))
	defer srv.Close()

	client := NewBlacklist(srv.URL, time.Second)

	fields, err := client.Fetch(context.Background(), "BAD TRADER")
	s.Require().NoError(err)
	hit, ok := fields.Value("hit")
	s.True(ok)
	s.Equal("fraud investigation", hit)

	fields, err = client.Fetch(context.Background(), "CLEAN TRADER")
	s.Require().NoError(err)
	_, ok = fields.Value("hit")
	s.False(ok)
}

func (s *ProvidersSuite) TestStubSetServesDeterministicRecords() {
	set := StubSet(0)
	fields, err := set["company_registry"].Fetch(context.Background(), "12345678")
	s.Require().NoError(err)
	name, _ := fields.Value("company_name")
	s.Equal("AUTOBAZAR HORIZONT s.r.o.", name)

	fields, err = set["blacklist"].Fetch(context.Background(), "UNKNOWN")
	s.Require().NoError(err)
	s.Empty(fields)
}
