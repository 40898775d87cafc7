// internal/app/system/directory/httpclient.go
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient talks to the external business-directory API over JSON.
type HTTPClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// NewHTTPClient builds a directory client against baseURL. The API key is
// sent as a bearer token on every request.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Businesses []struct {
		Name     string  `json:"name"`
		Phone    string  `json:"phone"`
		Email    string  `json:"email"`
		Website  string  `json:"website"`
		Address  string  `json:"address"`
		Category string  `json:"category"`
		Rating   float64 `json:"rating"`
	} `json:"businesses"`
}

func (c *HTTPClient) Search(ctx context.Context, q Query) ([]Business, error) {
	params := url.Values{}
	params.Set("term", q.Term)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.MaxResults > 0 {
		params.Set("limit", strconv.Itoa(q.MaxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory search: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("directory search: decode response: %w", err)
	}

	out := make([]Business, 0, len(body.Businesses))
	for _, b := range body.Businesses {
		out = append(out, Business{
			Name:     b.Name,
			Phone:    b.Phone,
			Email:    b.Email,
			Website:  b.Website,
			Address:  b.Address,
			Category: b.Category,
			Rating:   b.Rating,
		})
		if q.MaxResults > 0 && len(out) == q.MaxResults {
			break
		}
	}
	return out, nil
}
