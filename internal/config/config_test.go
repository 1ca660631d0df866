package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"api": { "token": "secret" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "secret", viper.GetString("api.token"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "https://smarttravel-vr.mobifone.vn/vr-api/api/hotspot", viper.GetString("api.serverUrl"))
	assert.Equal(t, "", viper.GetString("api.token"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "postgres", viper.GetString("db.password"))
	assert.Equal(t, "panorama", viper.GetString("db.database"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./scenes", viper.GetString("storage.memory.outputDir"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are still registered
	assert.Equal(t, "info", viper.GetString("logLevel"))
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetViewDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, ViewConfig{DefaultFov: 90, DefaultWidth: 1920, DefaultHeight: 1080}, GetViewDefaults())

	viper.Set("view.defaultFov", 60)
	assert.Equal(t, 60.0, GetViewDefaults().DefaultFov)
}

func TestGetDrawConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"draw": {"freeDrawTarget": 40}}`)))

	dc := GetDrawConfig()
	assert.Equal(t, 40, dc.FreeDrawTarget)
	assert.Equal(t, 32, dc.CircleSegments)
}

func TestGetAPIConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"api": {"token": "abc", "timeout": "5s"}}`)))

	ac := GetAPIConfig()
	assert.Equal(t, "https://smarttravel-vr.mobifone.vn/vr-api/api/hotspot", ac.ServerURL)
	assert.Equal(t, "abc", ac.Token)
	assert.Equal(t, 5*time.Second, ac.Timeout)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, 24*time.Hour, cfg.TTL)
	assert.Equal(t, "./scenes", cfg.Memory.OutputDir)
	assert.Equal(t, false, cfg.Memory.CompressOutput)
	assert.Equal(t, "", cfg.SQLite.Path)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"ttl": "1h",
			"memory": { "outputDir": "/tmp/out", "compressOutput": true },
			"sqlite": { "path": "/tmp/scenes.db", "dumpPath": "/tmp/dump.db" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, time.Hour, sc.TTL)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, true, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/scenes.db", sc.SQLite.Path)
	assert.Equal(t, "/tmp/dump.db", sc.SQLite.DumpPath)
}
