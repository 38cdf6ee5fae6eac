package common

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	got, ok := ExtractJSONObject("Here you go:\n```json\n{\"name\": \"x\", \"nodes\": []}\n```")
	require.True(t, ok)
	assert.Equal(t, `{"name": "x", "nodes": []}`, got)

	_, ok = ExtractJSONObject("no braces at all")
	assert.False(t, ok)

	_, ok = ExtractJSONObject("} backwards {")
	assert.False(t, ok)
}

func TestParseJSON(t *testing.T) {
	type analysis struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}

	t.Run("plain document", func(t *testing.T) {
		a, err := ParseJSON[analysis](`{"title": "Lead Scoring", "tags": ["crm"]}`)
		require.NoError(t, err)
		assert.Equal(t, "Lead Scoring", a.Title)
		assert.Equal(t, []string{"crm"}, a.Tags)
	})

	t.Run("surrounded by prose", func(t *testing.T) {
		a, err := ParseJSON[analysis]("Sure! {\"title\": \"Invoice Bot\"} Hope this helps.")
		require.NoError(t, err)
		assert.Equal(t, "Invoice Bot", a.Title)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseJSON[map[string]any]("not json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDataShape))
	})

	t.Run("broken object", func(t *testing.T) {
		_, err := ParseJSON[map[string]any](`{"title": }`)
		assert.ErrorIs(t, err, ErrDataShape)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 60))

	long := strings.Repeat("a", 70)
	got := Truncate(long, 60)
	assert.Len(t, got, 60)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 57)+"...", got)
}

func TestUpstreamError(t *testing.T) {
	var err error = &UpstreamError{Service: "claude", Status: 529, Body: "overloaded"}
	assert.Equal(t, "claude error: status 529: overloaded", err.Error())
	assert.True(t, IsUpstream(err))
	assert.False(t, IsUpstream(errors.New("plain")))
}
