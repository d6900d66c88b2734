package providers

import (
	"context"
	"time"

	"securedeal/internal/validation/gateway"
	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// Stub serves deterministic records with a configurable latency to mimic
// real-world calls. Used by local deployments and tests.
type Stub struct {
	Latency time.Duration
	Records map[string]models.Fields
}

func (s Stub) Fetch(_ context.Context, key string) (models.Fields, error) {
	time.Sleep(s.Latency)
	if fields, ok := s.Records[key]; ok {
		return fields, nil
	}
	return models.Fields{}, nil
}

// StubSet returns a provider map with sample records for every source, keyed
// the way real registry lookups would be.
func StubSet(latency time.Duration) map[id.SourceKind]gateway.Provider {
	return map[id.SourceKind]gateway.Provider{
		id.SourceCompanyRegistry: Stub{Latency: latency, Records: map[string]models.Fields{
			"12345678": {
				"registration_number": "12345678",
				"company_name":        "AUTOBAZAR HORIZONT s.r.o.",
				"vat_id":              "CZ12345678",
				"established_on":      "2015-06-01",
				"address":             "Hlavní 12, Praha 1",
			},
		}},
		id.SourceVATRegistry: Stub{Latency: latency, Records: map[string]models.Fields{
			"CZ12345678": {
				"payer_status":        "ACTIVE",
				"unreliable":          false,
				"registered_accounts": []string{"123456789/0100", "987654321/0300"},
			},
		}},
		id.SourceBlacklist: Stub{Latency: latency, Records: map[string]models.Fields{
			"BLOCKED VENDOR s.r.o.": {"hit": "fraud investigation"},
		}},
	}
}
