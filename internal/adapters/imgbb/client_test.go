package imgbb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "secret", r.URL.Query().Get("key"))

			file, header, err := r.FormFile("image")
			require.NoError(t, err)
			defer file.Close()
			body, _ := io.ReadAll(file)
			assert.Equal(t, "image.jpg", header.Filename)
			assert.Equal(t, []byte("jpeg-bytes"), body)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"id":"abc","url":"https://i.ibb.co/abc/image.jpg"},"success":true,"status":200}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "secret", srv.Client())
		url, err := c.Upload(context.Background(), "image.jpg", []byte("jpeg-bytes"))

		require.NoError(t, err)
		assert.Equal(t, "https://i.ibb.co/abc/image.jpg", url)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status_code":400,"error":{"message":"Invalid API v1 key."}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "bad", srv.Client()).Upload(context.Background(), "image.jpg", []byte("x"))
		assert.ErrorContains(t, err, "400")
	})

	t.Run("missing data.url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{},"success":true}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "secret", srv.Client()).Upload(context.Background(), "image.jpg", []byte("x"))
		assert.ErrorIs(t, err, ErrMissingURL)
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "secret", srv.Client()).Upload(context.Background(), "image.jpg", []byte("x"))
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("context deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := NewClient(srv.URL, "secret", srv.Client()).Upload(ctx, "image.jpg", []byte("x"))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("", "k", nil)
	assert.Equal(t, DefaultEndpoint, c.endpoint)
	assert.NotNil(t, c.httpClient)
}
