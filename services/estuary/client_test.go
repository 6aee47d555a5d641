package estuary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estuary/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second, zap.NewNop())
}

func TestClientSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.c","first_name":"Ada","practitioner_id":"p1"}`))
	})

	user, err := client.CurrentUser(WithToken(context.Background(), "tok-1"))
	require.NoError(t, err)
	assert.Equal(t, "p1", user.PractitionerID)
	assert.Equal(t, "Ada", user.DisplayName())
}

func TestClientListAcceptsPagedAndBareBodies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/modalities":
			_, _ = w.Write([]byte(`[{"id":"m1","name":"Reiki"}]`))
		case "/api/v1/services":
			assert.Equal(t, "p1", r.URL.Query().Get("practitioner_id"))
			assert.Equal(t, "session", r.URL.Query().Get("service_type"))
			_, _ = w.Write([]byte(`{"count":1,"results":[{"id":"s1","name":"Yoga","price":"45.50","duration_minutes":60,"service_type_code":"session"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	mods, err := client.Modalities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Reiki", mods[0].Name)

	services, err := client.ListServices(ctx, ServiceFilter{PractitionerID: "p1", ServiceType: models.ServiceTypeSession})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, 45.5, services[0].Summary().Price)
}

func TestClientMapsErrorBodies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"errors":{"name":["required"]}}}`))
	})

	_, err := client.CreateService(context.Background(), models.ServiceRequest{})
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "name: required", apiErr.Message)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestClientCreateServiceBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "120.00", body["price"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new-1","price":120}`))
	})

	rec, err := client.CreateService(context.Background(), models.ServiceRequest{Price: "120.00"})
	require.NoError(t, err)
	assert.Equal(t, "new-1", rec.ID)
	assert.Equal(t, 120.0, rec.PriceValue())
}

func TestClientUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zap.NewNop())
	_, err := client.Categories(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
