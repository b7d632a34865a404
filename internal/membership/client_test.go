package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"circuit-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string, pageLimit int) *Client {
	return NewClient(&config.MembershipConfig{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		PageLimit: pageLimit,
	}, zap.NewNop())
}

func TestAddressExists(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/addresses/77":
			w.WriteHeader(http.StatusOK)
		case "/api/addresses/404":
			w.WriteHeader(http.StatusNotFound)
		case "/api/addresses/403":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 50)
	ctx := context.Background()

	exists, err := client.AddressExists(ctx, "token-abc", 77)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "Bearer token-abc", gotAuth)

	exists, err = client.AddressExists(ctx, "token-abc", 404)
	require.NoError(t, err)
	assert.False(t, exists)

	// Forbidden means not visible, not an error.
	exists, err = client.AddressExists(ctx, "token-abc", 403)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = client.AddressExists(ctx, "token-abc", 500)
	assert.Error(t, err)
}

func TestListAddressesInMemberPaginates(t *testing.T) {
	// Five addresses served two per page.
	all := []uint{10, 11, 12, 13, 14}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("search[member_id]"))
		page := 0
		fmt.Sscan(r.URL.Query().Get("page"), &page)

		start := page * 2
		end := start + 2
		if end > len(all) {
			end = len(all)
		}
		content := make([]map[string]uint, 0, 2)
		for _, id := range all[start:end] {
			content = append(content, map[string]uint{"id": id})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content":   content,
			"_metadata": map[string]any{"total_records": len(all)},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2)
	ids, err := client.ListAddressesInMember(context.Background(), "token-abc", 7)
	require.NoError(t, err)
	assert.Equal(t, all, ids)
}

func TestListAddressesInMemberErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 50)
	_, err := client.ListAddressesInMember(context.Background(), "token-abc", 7)
	assert.Error(t, err)
}
