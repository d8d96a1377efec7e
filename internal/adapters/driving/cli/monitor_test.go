package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui"
	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func stubMonitorUI(t *testing.T, terminal bool, run func(context.Context, *tui.Ports) error) {
	t.Helper()
	oldTerminal, oldRun := isTerminal, runMonitorUI
	isTerminal = func() bool { return terminal }
	runMonitorUI = run
	t.Cleanup(func() {
		isTerminal, runMonitorUI = oldTerminal, oldRun
	})
}

func TestMonitorCmd_ServiceNotConfigured(t *testing.T) {
	withServices(t, &Services{})

	_, err := executeCommand(t, "monitor")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}

func TestMonitorCmd_Interactive(t *testing.T) {
	svc := &mockSyncService{}
	invoices := &mockInvoiceService{}
	withServices(t, &Services{Sync: svc, Invoices: invoices})

	var got *tui.Ports
	stubMonitorUI(t, true, func(_ context.Context, p *tui.Ports) error {
		got = p
		return nil
	})

	_, err := executeCommand(t, "monitor")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, svc, got.Sync)
	assert.Same(t, invoices, got.Invoices)
	assert.True(t, svc.started)
	assert.True(t, svc.stopped)
	assert.Nil(t, svc.observer, "the view polls instead of printing")
}

func TestMonitorCmd_PlainOutput(t *testing.T) {
	svc := &mockSyncService{}
	withServices(t, &Services{Sync: svc})
	stubMonitorUI(t, false, func(context.Context, *tui.Ports) error {
		t.Fatal("interactive view must not run without a terminal")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resetFlags(rootCmd)
	out := captureOutput(t)
	rootCmd.SetArgs([]string{"monitor"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)

	require.NoError(t, err)
	require.NotNil(t, svc.observer)
	svc.observer(true, 3)
	assert.Contains(t, out.String(), "online  3 pending")
	assert.True(t, svc.stopped)
}

func TestMonitorCmd_StartError(t *testing.T) {
	withServices(t, &Services{Sync: &mockSyncService{startErr: domain.ErrEngineRunning}})
	stubMonitorUI(t, true, func(context.Context, *tui.Ports) error { return nil })

	_, err := executeCommand(t, "monitor")

	assert.ErrorIs(t, err, domain.ErrEngineRunning)
}
