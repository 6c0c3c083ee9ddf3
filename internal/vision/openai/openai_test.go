package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/imgprompt/internal/domain"
)

var png = &domain.Image{MimeType: "image/png", Data: []byte{0x89, 0x50, 0x4E, 0x47}}

func TestOpenAIDescribe(t *testing.T) {
	var auth string
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"A red fox in a snowy forest, soft morning light."}}]}`))
	}))
	defer server.Close()

	describer := NewOpenAIDescriber("sk-test", "", server.URL)

	text, err := describer.Describe(context.Background(), "describe it", png)
	require.NoError(t, err)
	assert.Equal(t, "A red fox in a snowy forest, soft morning light.", text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, body.Model)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	require.Len(t, body.Messages[0].Content, 2)
	assert.Equal(t, "describe it", body.Messages[0].Content[0].Text)
	assert.Equal(t, png.DataURL(), body.Messages[0].Content[1].ImageURL.URL)
}

func TestOpenAIDescribeDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	describer := NewOpenAIDescriber("sk-test", "", server.URL)

	_, err := describer.Describe(context.Background(), "describe it", png)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIDescribeNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer server.Close()

	describer := NewOpenAIDescriber("sk-test", "", server.URL)

	_, err := describer.Describe(context.Background(), "describe it", png)
	assert.Error(t, err)
}
