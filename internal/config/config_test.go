package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dbname: recycle
jwt:
  secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ResetTTL)
	assert.Equal(t, 10.0, cfg.Geo.RadiusKM)
	assert.Equal(t, "label", cfg.Classifier.LabelPath)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  dbname: recycle
  password: from-file
jwt:
  secret: from-file
geo:
  radius_km: 5
`)
	t.Setenv("RECYCLE_JWT_SECRET", "from-env")
	t.Setenv("RECYCLE_DATABASE_PASSWORD", "env-pass")
	t.Setenv("RECYCLE_JWT_ACCESS_TTL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5.0, cfg.Geo.RadiusKM)
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("RECYCLE_JWT_SECRET", "env-only")
	t.Setenv("RECYCLE_DATABASE_DBNAME", "recycle")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-only", cfg.JWT.Secret)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing secret", body: "database:\n  dbname: recycle\n", want: "jwt.secret"},
		{name: "missing dbname", body: "jwt:\n  secret: x\n", want: "database.dbname"},
		{name: "negative radius", body: "jwt:\n  secret: x\ndatabase:\n  dbname: r\ngeo:\n  radius_km: -1\n", want: "radius_km"},
		{name: "bad yaml", body: "jwt: [", want: "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "recycle", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=recycle sslmode=disable", db.DSN())
}
