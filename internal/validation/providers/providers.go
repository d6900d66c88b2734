// Package providers implements the gateway's external source clients: the
// business registry, the VAT payer registry, and the internal blacklist.
// Clients normalize records into flat field maps and map transport failures
// onto the gateway's error taxonomy.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"securedeal/internal/validation/gateway"
	id "securedeal/pkg/domain"
)

const defaultTimeout = 10 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON issues the request and decodes a 200 response into out. A 404
// returns false with no error, so callers can produce an empty record.
func getJSON(ctx context.Context, client *http.Client, source id.SourceKind, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, gateway.NewProviderError(source, gateway.ErrInvalidResponse, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		category := gateway.ErrUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			category = gateway.ErrTimeout
		}
		return false, gateway.NewProviderError(source, category, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, gateway.NewProviderError(source, gateway.ErrRateLimited,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return false, gateway.NewProviderError(source, gateway.ErrUnavailable,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return false, gateway.NewProviderError(source, gateway.ErrInvalidResponse,
			fmt.Errorf("status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, gateway.NewProviderError(source, gateway.ErrInvalidResponse, err)
	}
	return true, nil
}
