// Package membership is the HTTP client for the peer-address directory
// service. Handlers use it to confirm that a referenced customer or
// service-provider address exists, and to expand a member into the set of
// addresses a global-active user may act for.
package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"circuit-service/pkg/config"

	"go.uber.org/zap"
)

// Directory is the consumer-facing surface of the address directory.
// Handlers depend on this interface so tests can stub it.
type Directory interface {
	AddressExists(ctx context.Context, token string, addressID uint) (bool, error)
	ListAddressesInMember(ctx context.Context, token string, memberID uint) ([]uint, error)
}

// Client talks to the membership service over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	PageLimit  int
	Logger     *zap.Logger
}

// NewClient creates a directory client from configuration.
func NewClient(cfg *config.MembershipConfig, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		PageLimit:  cfg.PageLimit,
		Logger:     logger,
	}
}

type address struct {
	ID uint `json:"id"`
}

type listResponse struct {
	Content  []address `json:"content"`
	Metadata struct {
		TotalRecords int64 `json:"total_records"`
	} `json:"_metadata"`
}

// AddressExists reads a single address record; a 404 means the address is
// not visible to the caller.
func (c *Client) AddressExists(ctx context.Context, token string, addressID uint) (bool, error) {
	url := fmt.Sprintf("%s/api/addresses/%d", c.BaseURL, addressID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusForbidden:
		return false, nil
	}
	return false, fmt.Errorf("membership address read returned status %d", resp.StatusCode)
}

// ListAddressesInMember pages through the directory and returns every
// address id in the member.
func (c *Client) ListAddressesInMember(ctx context.Context, token string, memberID uint) ([]uint, error) {
	var ids []uint
	page := 0
	for {
		url := fmt.Sprintf("%s/api/addresses?search[member_id]=%d&page=%d&limit=%d",
			c.BaseURL, memberID, page, c.PageLimit)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("membership address list returned status %d", resp.StatusCode)
		}

		var body listResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, a := range body.Content {
			ids = append(ids, a.ID)
		}
		if int64(len(ids)) >= body.Metadata.TotalRecords || len(body.Content) == 0 {
			break
		}
		page++
	}

	c.Logger.Debug("Resolved member addresses",
		zap.Uint("member_id", memberID),
		zap.Int("count", len(ids)))
	return ids, nil
}
