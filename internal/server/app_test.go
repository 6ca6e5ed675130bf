package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.BcryptCost = 4
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_InvalidSettings(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := testConfig()
	c.BcryptCost = 100
	_, err = newApp(c, logging.Discard(), db, repomanager.NewPostgresRepositoryManager())
	assert.Error(t, err)

	c = testConfig()
	c.SecretKey = ""
	_, err = newApp(c, logging.Discard(), db, repomanager.NewPostgresRepositoryManager())
	assert.Error(t, err)
}

func TestRun_StopsOnCancelAndClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app, err := newApp(testConfig(), logging.Discard(), db, repomanager.NewPostgresRepositoryManager())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ServerFailureStopsApp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	c := testConfig()
	c.EndpointAddrHTTP = "256.0.0.1:bad"
	app, err := newApp(c, logging.Discard(), db, repomanager.NewPostgresRepositoryManager())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http")
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after a server failed")
	}
}
