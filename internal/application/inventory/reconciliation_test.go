package inventory_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

func TestReconciliation_SinDescuadres(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	_, err := f.uc.CommitReservations(f.ctx, "s1", order(1, "s1", [2]int64{realID, 2}))
	require.NoError(t, err)

	rec := inventory.NewReconciliationUseCase(f.store.Repositories(), nil, zerolog.Nop(), f.clock.Now)
	report, err := rec.Run(f.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.CheckedRows)
	assert.Empty(t, report.Mismatches)
}

func TestReconciliation_ReportaDescuadre(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	require.NoError(t, f.store.Run(f.ctx, func(repos repository.Repositories) error {
		loc, err := repos.LocationStocks().GetForUpdate(f.ctx, realID, "DEFAULT")
		if err != nil {
			return err
		}
		loc.CommittedQty = 2
		return repos.LocationStocks().Save(f.ctx, loc)
	}))

	rec := inventory.NewReconciliationUseCase(f.store.Repositories(), nil, zerolog.Nop(), f.clock.Now)
	report, err := rec.Run(f.ctx)
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	m := report.Mismatches[0]
	assert.Equal(t, realID, m.ProductID)
	assert.Equal(t, int64(2), m.LedgerCommitted)
	assert.Zero(t, m.ExpectedCommitted)
	assert.Equal(t, int64(2), m.Drift)

	assert.Equal(t, int64(2), f.ledger(t, realID).CommittedQty, "la reconciliación no corrige nada")
}
