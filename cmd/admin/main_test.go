package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/server/config"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFlagsArgs(t *testing.T) {
	f := &rootFlags{}
	assert.Empty(t, f.args())

	f = &rootFlags{configPath: "cfg.json", dsn: "postgres://x", lockoutBackend: "redis"}
	assert.Equal(t, []string{"-c", "cfg.json", "-d", "postgres://x", "-l", "redis"}, f.args())
}

func TestCommandsRequireSeller(t *testing.T) {
	for _, name := range []string{"status", "unblock"} {
		t.Run(name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs([]string{name})
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "accepts 1 arg")
		})
	}
}

func TestPrintStatus(t *testing.T) {
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	st := &services.SellerStatus{
		Lockout:     models.LockoutState{SalespersonID: "ana", FailedAttempts: 3, IsBlocked: true, LastFailureAt: &at},
		ListBlocked: false,
	}

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)

	require.NoError(t, printStatus(cmd, "ana", st, false))
	assert.Contains(t, buf.String(), "Failed attempts:   3")
	assert.Contains(t, buf.String(), "Blocked:           true")
	assert.Contains(t, buf.String(), "2025-02-03 04:05:06 UTC")

	buf.Reset()
	require.NoError(t, printStatus(cmd, "ana", st, true))
	assert.Contains(t, buf.String(), `"failed_attempts": 3`)
	assert.Contains(t, buf.String(), `"listed_as_blocked": false`)
}

func TestExplainStoreError(t *testing.T) {
	cfg := &config.Config{BoltPath: "data/lockouts.db"}

	inUse := fmt.Errorf("open bolt data/lockouts.db: %w", common.ErrLockoutStoreInUse)
	err := explainStoreError(inUse, cfg)
	require.ErrorIs(t, err, common.ErrLockoutStoreInUse)
	assert.Contains(t, err.Error(), "stop the server")
	assert.Contains(t, err.Error(), "data/lockouts.db")

	other := errors.New("redis: connection refused")
	err = explainStoreError(other, cfg)
	require.ErrorIs(t, err, other)
	assert.NotContains(t, err.Error(), "stop the server")
}
