package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/example/wordbox/pkg/models"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apple = models.Word{ID: 1, English: "apple", Persian: "سیب"}

func newMockedClient(t *testing.T) *ChatGPT {
	t.Helper()
	c, err := New("test-key")
	require.NoError(t, err)
	httpmock.ActivateNonDefault(c.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateExample(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, defaultAPIURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

			var body ChatRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, defaultModel, body.Model)
			require.Len(t, body.Messages, 2)
			assert.Contains(t, body.Messages[1].Content, "'apple'")
			assert.Contains(t, body.Messages[1].Content, "سیب")

			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]string{"content": "  I ate an apple.\n"}},
				},
			})
		})

	example, err := c.GenerateExample(context.Background(), apple)
	require.NoError(t, err)
	assert.Equal(t, "I ate an apple.", example)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestGenerateExampleAPIError(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, defaultAPIURL,
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`))

	_, err := c.GenerateExample(context.Background(), apple)
	assert.ErrorContains(t, err, "invalid key")
}

func TestGenerateExampleEmptyChoices(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, defaultAPIURL,
		httpmock.NewStringResponder(http.StatusOK, `{"choices":[]}`))

	_, err := c.GenerateExample(context.Background(), apple)
	assert.ErrorContains(t, err, "no response choices")
}

func TestGenerateExampleWithFallback(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, defaultAPIURL,
		httpmock.NewStringResponder(http.StatusBadGateway, "<html>bad gateway</html>"))

	got := c.GenerateExampleWithFallback(context.Background(), apple)
	assert.Equal(t, FallbackExample(apple), got)
	assert.Equal(t, "This is an example of the word 'apple'.", got)
}
