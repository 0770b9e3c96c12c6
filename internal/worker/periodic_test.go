package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodic_KeepsRunningAfterErrorsAndPanics(t *testing.T) {
	var calls atomic.Int32
	task := func(ctx context.Context) error {
		n := calls.Add(1)
		switch n {
		case 1:
			return errors.New("fallo transitorio")
		case 2:
			panic("boom")
		}
		return nil
	}
	p := worker.NewPeriodic("test", 5*time.Millisecond, task, zerolog.Nop(), worker.RunImmediately())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 4 }, time.Second, 5*time.Millisecond,
		"el worker debe seguir iterando tras un error y un pánico")
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start no terminó tras cancelar el contexto")
	}
}

func TestPeriodic_InvalidInterval(t *testing.T) {
	p := worker.NewPeriodic("bad", 0, func(context.Context) error { return nil }, zerolog.Nop())
	assert.Error(t, p.Start(context.Background()))
}
