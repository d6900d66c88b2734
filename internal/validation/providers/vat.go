package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// VATRegistry queries the tax authority's VAT payer registry by VAT id.
type VATRegistry struct {
	client  *http.Client
	baseURL string
}

func NewVATRegistry(baseURL string, timeout time.Duration) *VATRegistry {
	return &VATRegistry{client: newHTTPClient(timeout), baseURL: baseURL}
}

type vatRecord struct {
	PayerStatus        string   `json:"statusPlatce"`
	Unreliable         bool     `json:"nespolehlivyPlatce"`
	RegisteredAccounts []string `json:"seznamUctu"`
}

func (c *VATRegistry) Fetch(ctx context.Context, key string) (models.Fields, error) {
	endpoint := fmt.Sprintf("%s/vat-payers/%s", c.baseURL, url.PathEscape(key))
	var record vatRecord
	found, err := getJSON(ctx, c.client, id.SourceVATRegistry, endpoint, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return models.Fields{}, nil
	}
	return models.Fields{
		"payer_status":        record.PayerStatus,
		"unreliable":          record.Unreliable,
		"registered_accounts": record.RegisteredAccounts,
	}, nil
}
