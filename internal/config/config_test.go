package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Listen, cfg.Listen)
	assert.Equal(t, time.Monday, cfg.FirstWeekday())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadYAMLNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen: 0.0.0.0:9090
timezone: Europe/Lisbon
week_start: Sunday
holiday_feeds:
  - id: br
    url: https://example.com/br.ics
holiday_rules:
  - name: Natal
    rrule: FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25
basic_auth:
  username: admin
  password: secret
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Listen)
	assert.Equal(t, time.Sunday, cfg.FirstWeekday())
	assert.Equal(t, "pt_BR", cfg.Locale)
	assert.Equal(t, "%Y-%m-%d", cfg.DateFormat)
	require.Len(t, cfg.HolidayFeeds, 1)
	assert.Equal(t, "br", cfg.HolidayFeeds[0].ID)
	require.Len(t, cfg.HolidayRules, 1)
	assert.True(t, cfg.BasicAuth.Enabled())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
listen = "127.0.0.1:7000"
locale = "en"
log_format = "json"

[[holiday_rules]]
name = "Tiradentes"
rrule = "FREQ=YEARLY;BYMONTH=4;BYMONTHDAY=21"
type = "regional"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "json", cfg.LogFormat)
	require.Len(t, cfg.HolidayRules, 1)
	assert.Equal(t, "regional", cfg.HolidayRules[0].Type)
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Locale = "en"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "en", loaded.Locale)
	assert.Equal(t, cfg.RefreshCron, loaded.RefreshCron)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SMARTTIME_LISTEN", "127.0.0.1:9999")
	t.Setenv("SMARTTIME_HOLIDAYS_PATH", "/tmp/h.json")
	t.Setenv("SMARTTIME_BASIC_AUTH_USERNAME", "ops")
	t.Setenv("SMARTTIME_BASIC_AUTH_PASSWORD", "pw")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.Equal(t, "/tmp/h.json", cfg.HolidaysPath)
	assert.Equal(t, "ops", cfg.BasicAuth.Username)

	// The first-run file keeps defaults; env is not persisted.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "9999")
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad zone":     "timezone: Mars/Olympus\n",
		"bad week":     "week_start: friday\n",
		"bad format":   "date_format: YYYY-MM-DD\n",
		"bad cron":     "refresh: every day\n",
		"bad feed url": "holiday_feeds:\n  - id: x\n    url: not-a-url\n",
		"no password":  "basic_auth:\n  username: admin\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SMARTTIME_LOCALE", "en")
	t.Setenv("SMARTTIME_WEEK_START", "sunday")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, time.Sunday, cfg.FirstWeekday())

	t.Setenv("SMARTTIME_LOG_LEVEL", "chatty")
	_, err = FromEnv()
	assert.Error(t, err)
}
