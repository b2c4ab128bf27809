package db

import (
	"testing"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = "file:" + t.Name() + "?mode=memory&cache=shared"
	return cfg
}

func TestConnectMigrateSeedIdempotent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.AdminPassword = "s3cret-pass"
	cfg.Database.Seed = true
	log := zap.NewNop()

	conn, err := Connect(cfg.Database, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn, cfg, log))

	require.NoError(t, Seed(conn, cfg, log))
	require.NoError(t, Seed(conn, cfg, log))

	var users, products, materials, links int64
	conn.Model(&models.User{}).Count(&users)
	conn.Model(&models.Product{}).Count(&products)
	conn.Model(&models.Material{}).Count(&materials)
	conn.Model(&models.ProductMaterial{}).Count(&links)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 4, products)
	assert.EqualValues(t, 4, materials)
	assert.EqualValues(t, 4, links)

	var admin models.User
	require.NoError(t, conn.Where("role = ?", models.RoleAdmin).First(&admin).Error)
	assert.True(t, auth.CheckPassword(admin.Password, "s3cret-pass"))
}

func TestSeedGeneratesAdminPassword(t *testing.T) {
	cfg := testConfig(t)
	log := zap.NewNop()
	conn, err := Connect(cfg.Database, log)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn))
	require.NoError(t, Seed(conn, cfg, log))

	var admin models.User
	require.NoError(t, conn.First(&admin).Error)
	assert.Equal(t, cfg.Auth.AdminEmail, admin.Email)
	assert.NotEmpty(t, admin.Password)
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, _, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	got := MaskDSN("host=db user=u password=hunter2 dbname=x")
	assert.Equal(t, "host=db user=u password=*** dbname=x", got)
}
