// internal/keeper/client_test.go
package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

func TestClientCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/upkeep/check", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"data":{"upkeep_needed":true,"perform_data":"W10=","checked":4,"needs_upkeep":1}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1/", "token-123", server.Client())
	result, err := client.Check(context.Background())
	require.NoError(t, err)

	assert.True(t, result.UpkeepNeeded)
	assert.Equal(t, []byte("[]"), result.PerformData)
	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 1, result.NeedsUpkeep)
}

func TestClientPerform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upkeep/perform", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			PerformData []byte `json:"perform_data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []byte(`[]`), body.PerformData)

		io.WriteString(w, `{"success":true,"data":{"message":"ok","report":{"run_id":"6f1c6f5e-3c1a-4a53-8d5e-0c2f0b9f8a10","outcomes":[],"checked":2,"needed":2,"succeeded":1,"failed":1,"deferred":0}}}`)
	}))
	defer server.Close()

	report, err := NewClient(server.URL, "", nil).Perform(context.Background(), []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "6f1c6f5e-3c1a-4a53-8d5e-0c2f0b9f8a10", report.RunID.String())
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []models.Outcome{}, report.Outcomes)
}

func TestClientErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"error":{"code":"InvalidPerformData","message":"Perform data could not be decoded"}}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "t", nil).Perform(context.Background(), []byte("x"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "InvalidPerformData", apiErr.Code)
	assert.Equal(t, "Perform data could not be decoded", apiErr.Reason)
}

func TestClientNonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down\n")
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "t", nil).Check(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Reason)
}
