package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"problem-hunt.backend/pkg/redis"
)

// withStubbedBoot swaps the process-level hooks for in-memory stand-ins and
// restores them when the test finishes.
func withStubbedBoot(t *testing.T) {
	t.Helper()

	origDotenv, origRedis, origOpenDB, origRun := loadDotenv, initRedis, openDB, runServer
	t.Cleanup(func() {
		loadDotenv, initRedis, openDB, runServer = origDotenv, origRedis, origOpenDB, origRun
	})

	loadDotenv = func(...string) error { return errors.New("no .env in tests") }
	initRedis = func(url, password string) error {
		mr := miniredis.RunT(t)
		redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
		return nil
	}
	openDB = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(fmt.Sprintf("file:boot_%p?mode=memory&cache=shared", t)), &gorm.Config{})
	}
	runServer = func(r *gin.Engine, port string) error { return nil }
}

func TestRunMainProcess(t *testing.T) {
	withStubbedBoot(t)
	require.NoError(t, runMainProcess())
}

func TestRunMainProcess_RedisFailure(t *testing.T) {
	withStubbedBoot(t)
	initRedis = func(url, password string) error { return errors.New("connection refused") }

	err := runMainProcess()
	assert.ErrorContains(t, err, "redis")
}

func TestRunMainProcess_DBFailure(t *testing.T) {
	withStubbedBoot(t)
	openDB = func(dsn string) (*gorm.DB, error) { return nil, errors.New("dial error") }

	err := runMainProcess()
	assert.ErrorContains(t, err, "database")
}

func TestRunMainProcess_ServerFailure(t *testing.T) {
	withStubbedBoot(t)
	runServer = func(r *gin.Engine, port string) error { return errors.New("port in use") }

	err := runMainProcess()
	assert.ErrorContains(t, err, "server")
}
