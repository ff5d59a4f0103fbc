package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://api.example.com/forecast"

func newMockClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := New(&Config{Transport: transport, UserAgent: "irrigo-test"})
	t.Cleanup(client.Close)
	return client, transport
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config uses defaults", func(t *testing.T) {
		client := New(nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("custom config", func(t *testing.T) {
		client := New(&Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"})
		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "TestAgent/1.0", client.userAgent)
	})
}

func TestGet_InjectsUserAgent(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, testURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "irrigo-test", req.Header.Get("User-Agent"))
			return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
		})

	resp, err := client.Get(t.Context(), testURL)
	require.NoError(t, err)
	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestDo_KeepsExplicitUserAgent(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, testURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "custom/2.0", req.Header.Get("User-Agent"))
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, testURL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/2.0")

	resp, err := client.Do(t.Context(), req)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestDo_BodyReadableAfterDefaultTimeout(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, testURL, httpmock.NewStringResponder(http.StatusOK, `{"list":[]}`))

	// context.Background has no deadline, so the default timeout path buffers the body
	resp, err := client.Get(context.Background(), testURL)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[]}`, string(data))
}

func TestDo_NilRequest(t *testing.T) {
	t.Parallel()

	client := New(nil)
	_, err := client.Do(t.Context(), nil)
	require.Error(t, err)
}

func TestPost_MarshalsJSON(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodPost, testURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			data, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"question":"irrigate?"}`, string(data))
			return httpmock.NewStringResponse(http.StatusOK, "{}"), nil
		})

	payload := struct {
		Question string `json:"question"`
	}{"irrigate?"}

	resp, err := client.Post(t.Context(), testURL, "", payload)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestHooks(t *testing.T) {
	t.Parallel()

	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, testURL, httpmock.NewStringResponder(http.StatusTeapot, ""))

	var before, after atomic.Int32
	var status atomic.Int32
	client.SetBeforeRequestHook(func(*http.Request) { before.Add(1) })
	client.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error) {
		after.Add(1)
		if err == nil {
			status.Store(int32(resp.StatusCode))
		}
	})

	resp, err := client.Get(t.Context(), testURL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), before.Load())
	assert.Equal(t, int32(1), after.Load())
	assert.Equal(t, int32(http.StatusTeapot), status.Load())
}

func TestReadBody_Limit(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Body: io.NopCloser(strings.NewReader(strings.Repeat("x", MaxResponseBytes+1)))}
	_, err := ReadBody(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")

	body, err := ReadBody(nil)
	require.NoError(t, err)
	assert.Nil(t, body)
}
