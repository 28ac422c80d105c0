package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoJSON(t *testing.T) {
	var gotID, gotType string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(RequestIDHeader)
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(time.Second)
	resp, err := c.DoJSON(context.Background(), http.MethodPost, srv.URL, map[string]string{"a": "b"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(resp.Body))
	assert.Equal(t, resp.RequestID, gotID)
	assert.Len(t, gotID, 36)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "b", gotBody["a"])
}

func TestClient_DoJSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(time.Second).DoJSON(context.Background(), http.MethodGet, url, nil)
	assert.Error(t, err)
}
