package database

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/config"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestOpenGORMSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenGORM(ctx, config.DBConfig{Driver: config.DriverSQLite, DSN: "file:dbtest?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseGORM(db) })

	require.NoError(t, AutoMigrate(ctx, db, &widget{}))
	require.NoError(t, db.Create(&widget{Name: "sprocket"}).Error)

	var got widget
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "sprocket", got.Name)
}

func TestOpenGORMRejectsUnknownDriver(t *testing.T) {
	_, err := OpenGORM(context.Background(), config.DBConfig{Driver: config.DriverMongo}, nil)
	assert.ErrorContains(t, err, "unsupported sql driver")
}

func TestOpenRedis(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := OpenRedis(context.Background(), "redis://"+srv.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpenRedisErrors(t *testing.T) {
	_, err := OpenRedis(context.Background(), "")
	assert.Error(t, err)

	_, err = OpenRedis(context.Background(), "http://not-redis")
	assert.ErrorContains(t, err, "parsing redis url")
}

func TestConnectMongo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	client, db, err := ConnectMongo(context.Background(), uri, "storefront_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	assert.Equal(t, "storefront_test", db.Name())
}

func TestConnectMongoRequiresURI(t *testing.T) {
	_, _, err := ConnectMongo(context.Background(), "", "x")
	assert.Error(t, err)
}
