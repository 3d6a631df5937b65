package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

type profile struct {
	Name   string   `json:"name"`
	Rate   float64  `json:"rate"`
	Count  int      `json:"count"`
	Tags   []string `json:"tags"`
	Active bool     `json:"active"`
}

func TestMemoryLoadMissing(t *testing.T) {
	var p profile
	err := NewMemory().Load(context.Background(), "settings", &p)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestDocumentDefaultsAndUpsert(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(NewMemory(), "settings", func() profile { return profile{Name: "default", Rate: 70} })

	got, err := doc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "default", got.Name)

	require.NoError(t, doc.Put(ctx, profile{Name: "first"}))
	require.NoError(t, doc.Put(ctx, profile{Name: "second", Rate: 65.5, Tags: []string{"a"}}))
	got, err = doc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, profile{Name: "second", Rate: 65.5, Tags: []string{"a"}}, got)
	require.Equal(t, "settings", doc.Key())
}

func TestBSONConversionRoundTrip(t *testing.T) {
	in := []profile{{Name: "Lunch", Rate: 70, Count: 3, Tags: []string{"veg", "x,y"}, Active: true}}

	body, err := toBSON(in)
	require.NoError(t, err)
	raw, err := fromBSON(body)
	require.NoError(t, err)

	var out []profile
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, in, out)
}
