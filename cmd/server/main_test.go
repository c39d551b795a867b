package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscoins/coinledger/internal/infrastructure/config"
	"github.com/campuscoins/coinledger/internal/infrastructure/idgen"
	"github.com/campuscoins/coinledger/internal/usecase"
)

func TestOpenBackend_Memory(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.StorageDriverMemory, LedgerLockTimeout: time.Second}

	be, err := openBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer be.Close()

	assert.Empty(t, be.checks)

	services := usecase.NewServices(be.stores, usecase.ServiceOptions{
		IDGen:        idgen.NewULIDGenerator(),
		WelcomeBonus: 100,
	})
	account, err := services.Coins.OpenAccount(context.Background(), usecase.OpenAccountInput{AccountID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Balance)
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	_, err := openBackend(context.Background(), &config.Config{StorageDriver: "sqlite"})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestLoadCatalog(t *testing.T) {
	c, err := loadCatalog(&config.Config{})
	require.NoError(t, err)
	offers, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, offers, 3)

	path := filepath.Join(t.TempDir(), "offers.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[offer]]
id = "7"
title = "Gym Day Pass"
coin_cost = 75
partner_name = "Campus Gym"
category = "sport"
`), 0o600))

	c, err = loadCatalog(&config.Config{OffersFile: path})
	require.NoError(t, err)
	offer, err := c.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, int64(75), offer.CoinCost)
	assert.True(t, offer.Active)

	_, err = loadCatalog(&config.Config{OffersFile: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{
		HTTPPort:         "9090",
		HTTPReadTimeout:  time.Second,
		HTTPWriteTimeout: 2 * time.Second,
		HTTPIdleTimeout:  3 * time.Second,
	}

	srv := newServer(cfg, nil)
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
}

func TestBackendCloseRunsInReverse(t *testing.T) {
	var order []int
	be := &backend{closers: []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}}

	be.Close()
	assert.Equal(t, []int{2, 1}, order)
}
