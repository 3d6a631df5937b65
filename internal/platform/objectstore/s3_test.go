package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigEnabled(t *testing.T) {
	require.False(t, Config{}.Enabled())
	require.False(t, Config{Endpoint: "r2.example.com"}.Enabled())
	require.True(t, Config{Endpoint: "r2.example.com", Bucket: "imports"}.Enabled())
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Endpoint: "r2.example.com"})
	require.ErrorContains(t, err, "bucket is required")
}

func TestKeyPrefix(t *testing.T) {
	s := &Store{prefix: "imports"}
	require.Equal(t, "imports/2025/01/a.csv", s.Key("/2025/01/a.csv"))

	s = &Store{}
	require.Equal(t, "a.csv", s.Key("a.csv"))
}
