package classifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recycle-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		labelPath string
		want      string
		wantErr   string
	}{
		{name: "flat label", status: 200, body: `{"label":"Plastic"}`, want: "plastic"},
		{name: "nested path", status: 200, body: `{"predictions":[{"class":"glass","score":0.9}]}`, labelPath: "predictions.0.class", want: "glass"},
		{name: "server error", status: 503, body: `{}`, wantErr: "status 503"},
		{name: "missing label", status: 200, body: `{"other":"x"}`, wantErr: "no value"},
		{name: "not json", status: 200, body: `plastic`, wantErr: "invalid json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, "image-bytes", string(body))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewHTTPClassifier(config.ClassifierConfig{
				URL: srv.URL, APIKey: "key", LabelPath: tt.labelPath, Timeout: time.Second,
			})
			got, err := c.Classify(context.Background(), []byte("image-bytes"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"label":"paper"}`))
	}))
	defer srv.Close()

	c := NewHTTPClassifier(config.ClassifierConfig{URL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Classify(context.Background(), []byte("x"))
	require.Error(t, err)
}

func TestClassifyNotConfigured(t *testing.T) {
	_, err := NewHTTPClassifier(config.ClassifierConfig{}).Classify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
