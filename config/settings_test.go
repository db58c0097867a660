package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", s.Store.Backend)
	assert.Equal(t, 10, s.Similarity.TopK)
	assert.Equal(t, 0.6, s.Hybrid.CollaborativeWeight)
	assert.Equal(t, 0.4, s.Hybrid.ContentWeight)
	assert.Equal(t, 20, s.Hybrid.DefaultLimit)
	assert.Equal(t, 30, s.Popular.WindowDays)
	assert.Equal(t, time.Hour, s.Refresh.Interval)
	assert.Equal(t, 5*time.Second, s.Refresh.EntityTimeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recsys.yaml")
	yaml := `
store:
  backend: redis
redis:
  addr: "10.0.0.1:6379"
similarity:
  top_k: 25
refresh:
  interval: 15m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("RECSYS_POPULAR_WINDOW_DAYS", "7")
	t.Setenv("RECSYS_SIMILARITY_TOP_K", "30")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", s.Store.Backend)
	assert.Equal(t, "10.0.0.1:6379", s.Redis.Addr)
	assert.Equal(t, 30, s.Similarity.TopK, "env overrides file")
	assert.Equal(t, 7, s.Popular.WindowDays)
	assert.Equal(t, 15*time.Minute, s.Refresh.Interval)
	assert.Equal(t, 10, s.Similarity.NeighborLimit, "defaults survive")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown backend", func(s *Settings) { s.Store.Backend = "cassandra" }},
		{"zero top_k", func(s *Settings) { s.Similarity.TopK = 0 }},
		{"negative weight", func(s *Settings) { s.Hybrid.ContentWeight = -1 }},
		{"both weights zero", func(s *Settings) {
			s.Hybrid.CollaborativeWeight = 0
			s.Hybrid.ContentWeight = 0
		}},
		{"redis without addr", func(s *Settings) {
			s.Store.Backend = "redis"
			s.Redis.Addr = ""
		}},
		{"sql without dsn", func(s *Settings) {
			s.Store.Backend = "sql"
			s.Database.DSN = ""
		}},
		{"bad log level", func(s *Settings) { s.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "similarity.top_k", envKey("RECSYS_SIMILARITY_TOP_K"))
	assert.Equal(t, "store.backend", envKey("RECSYS_STORE_BACKEND"))
	assert.Equal(t, "hybrid.collaborative_weight", envKey("RECSYS_HYBRID_COLLABORATIVE_WEIGHT"))
}
