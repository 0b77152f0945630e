package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Empty(t, cfg.Git.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Git.SlowCallThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.RepositoryDebounce)
	assert.Equal(t, 2500*time.Millisecond, cfg.Watch.FileSystemDebounce)
	assert.True(t, cfg.Watch.IgnoreFetchHead)
	assert.True(t, cfg.Log.FileEnabled)
}

func TestConfig_YAMLKeys(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Git.ExtraConfigs = []string{"core.quotepath=false"}

	data, err := yaml.Marshal(cfg)
	assert.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "slow_call_threshold:")
	assert.Contains(t, out, "repository_debounce:")
	assert.Contains(t, out, "file_system_debounce:")
	assert.Contains(t, out, "- core.quotepath=false")
}

func TestGitConfig_EnvironmentMap(t *testing.T) {
	t.Parallel()

	assert.Nil(t, GitConfig{}.EnvironmentMap())

	cfg := GitConfig{Environment: []string{"GIT_TRACE=0", "LANG=C.UTF-8", "GIT_TRACE=1"}}
	assert.Equal(t, map[string]string{"GIT_TRACE": "1", "LANG": "C.UTF-8"}, cfg.EnvironmentMap())
}
