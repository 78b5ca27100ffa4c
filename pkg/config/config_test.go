package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "research-collective", s.CommunityName)
	assert.Equal(t, 16, s.MaxConcurrentAgents)
	assert.Equal(t, 10, s.PromotionCheckInterval)
	assert.Equal(t, 5*time.Second, s.HandlerTimeout.Std())
	assert.Equal(t, 1, s.Matching.MinExpertiseGap)
	assert.Equal(t, 3, s.Matching.MaxExpertiseGap)
	require.NoError(t, s.validate())
}

func TestParse(t *testing.T) {
	t.Run("overrides with defaults for the rest", func(t *testing.T) {
		s, err := Parse([]byte(`
community_name: ai-lab
max_concurrent_agents: 4
handler_timeout: 2s
log_level: DEBUG
matching:
  reputation_floor: 0.7
`))
		require.NoError(t, err)
		assert.Equal(t, "ai-lab", s.CommunityName)
		assert.Equal(t, 4, s.MaxConcurrentAgents)
		assert.Equal(t, 2*time.Second, s.HandlerTimeout.Std())
		assert.Equal(t, "debug", s.LogLevel)
		assert.Equal(t, 0.7, s.Matching.ReputationFloor)
		// 未设置的字段回退默认值
		assert.Equal(t, 10, s.PromotionCheckInterval)
		assert.Equal(t, 1, s.Matching.MinExpertiseGap)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		cases := map[string]string{
			"negative agents":  "max_concurrent_agents: -1",
			"bad log level":    "log_level: verbose",
			"inverted window":  "matching: {min_expertise_gap: 5, max_expertise_gap: 2}",
			"floor above one":  "matching: {reputation_floor: 1.5}",
			"zero promotion":   "promotion_check_interval: -3",
		}
		for name, body := range cases {
			_, err := Parse([]byte(body))
			assert.Error(t, err, name)
		}
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("community_name: [unclosed"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "community.yaml")
		require.NoError(t, os.WriteFile(path, []byte("community_name: from-file\n"), 0644))

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", s.CommunityName)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		s := Settings{LogLevel: level}
		assert.Equal(t, want, s.SlogLevel(), level)
	}
}
