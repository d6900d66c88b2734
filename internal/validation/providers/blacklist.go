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

// Blacklist queries the internal counterparty blacklist. A clean subject
// yields an empty record; a listed one carries the hit reason, so absence
// rules read naturally.
type Blacklist struct {
	client  *http.Client
	baseURL string
}

func NewBlacklist(baseURL string, timeout time.Duration) *Blacklist {
	return &Blacklist{client: newHTTPClient(timeout), baseURL: baseURL}
}

type blacklistRecord struct {
	Listed bool   `json:"listed"`
	Reason string `json:"reason"`
}

func (c *Blacklist) Fetch(ctx context.Context, key string) (models.Fields, error) {
	endpoint := fmt.Sprintf("%s/check?subject=%s", c.baseURL, url.QueryEscape(key))
	var record blacklistRecord
	found, err := getJSON(ctx, c.client, id.SourceBlacklist, endpoint, &record)
	if err != nil {
		return nil, err
	}
	if !found || !record.Listed {
		return models.Fields{}, nil
	}
	reason := record.Reason
	if reason == "" {
		reason = "listed"
	}
	return models.Fields{"hit": reason}, nil
}
