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

// CompanyRegistry queries the public business registry by company id.
type CompanyRegistry struct {
	client  *http.Client
	baseURL string
}

func NewCompanyRegistry(baseURL string, timeout time.Duration) *CompanyRegistry {
	return &CompanyRegistry{client: newHTTPClient(timeout), baseURL: baseURL}
}

type companyRecord struct {
	RegistrationNumber string `json:"ico"`
	CompanyName        string `json:"obchodniJmeno"`
	VATID              string `json:"dic"`
	EstablishedOn      string `json:"datumVzniku"`
	Address            string `json:"sidlo"`
}

func (c *CompanyRegistry) Fetch(ctx context.Context, key string) (models.Fields, error) {
	endpoint := fmt.Sprintf("%s/economic-subjects/%s", c.baseURL, url.PathEscape(key))
	var record companyRecord
	found, err := getJSON(ctx, c.client, id.SourceCompanyRegistry, endpoint, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return models.Fields{}, nil
	}
	return models.Fields{
		"registration_number": record.RegistrationNumber,
		"company_name":        record.CompanyName,
		"vat_id":              record.VATID,
		"established_on":      record.EstablishedOn,
		"address":             record.Address,
	}, nil
}
