package cloudinary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:    srv.URL,
		CloudName:  "demo",
		APIKey:     "key123",
		APISecret:  "shh",
		Folder:     "ecommerce",
		HTTPClient: srv.Client(),
	})
}

func TestUpload(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "data:image/png;base64,aGk=", r.PostForm.Get("file"))
		assert.Equal(t, "ecommerce", r.PostForm.Get("folder"))
		assert.Equal(t, "key123", r.PostForm.Get("api_key"))
		assert.NotEmpty(t, r.PostForm.Get("timestamp"))
		assert.Len(t, r.PostForm.Get("signature"), 40) // hex sha1

		w.Write([]byte(`{"secure_url": "https://res.example/ecommerce/abc.png", "public_id": "ecommerce/abc"}`))
	})

	got, err := c.Upload(context.Background(), "data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/ecommerce/abc.png", got)
}

func TestUploadRejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "invalid image file"}}`))
	})

	_, err := c.Upload(context.Background(), "not-an-image")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image file")
}

func TestUploadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"secure_url": "https://res.example/ecommerce/abc.png"}`))
	})

	got, err := c.Upload(context.Background(), "payload")
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/ecommerce/abc.png", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUploadClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad signature", http.StatusUnauthorized)
	})

	_, err := c.Upload(context.Background(), "payload")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		result  string
		wantErr bool
	}{
		{"deleted", "ok", false},
		{"already gone", "not found", false},
		{"pending", "queued", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1_1/demo/image/destroy", r.URL.Path)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "ecommerce/abc", r.PostForm.Get("public_id"))
				w.Write([]byte(`{"result": "` + tt.result + `"}`))
			})

			err := c.Delete(context.Background(), "ecommerce/abc")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeleteMany(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if calls.Add(1) == 2 {
			// One failure must not stop the rest of the batch.
			http.Error(w, "boom", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"result": "ok"}`))
	})

	ids := []string{"ecommerce/a", "ecommerce/b", "ecommerce/c"}
	err := DeleteMany(context.Background(), c, ids)
	assert.Error(t, err)
	assert.Equal(t, int32(len(ids)), calls.Load())
}

func TestPublicIDFromURL(t *testing.T) {
	c := New(Options{Folder: "ecommerce"})

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"versioned delivery url",
			"https://res.cloudinary.com/demo/image/upload/v1700000000/ecommerce/abc123.png",
			"ecommerce/abc123",
		},
		{"no extension", "https://res.cloudinary.com/demo/ecommerce/abc123", "ecommerce/abc123"},
		{"empty path", "https://res.cloudinary.com", ""},
		{"garbage", "://nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PublicIDFromURL(tt.url))
		})
	}
}

func TestPublicIDFromURLNoFolder(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, "abc123", c.PublicIDFromURL("https://res.example/abc123.jpg"))
}
