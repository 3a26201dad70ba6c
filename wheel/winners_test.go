package wheel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/isrealsanci/wheel-app/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls   int
	records []WinnerRecord
	err     error
}

func (f *fakeSource) Fetch(context.Context) ([]WinnerRecord, error) {
	f.calls++
	return f.records, f.err
}

func winners(n int) []WinnerRecord {
	out := make([]WinnerRecord, n)
	for i := range out {
		out[i] = WinnerRecord{
			Address: fmt.Sprintf("0x%040d", i),
			Amount:  0.01,
			TxHash:  fmt.Sprintf("0xtx%d", i),
			Chain:   "celo",
			Token:   "CELO",
		}
	}
	return out
}

func TestRefreshPrimarySuccess(t *testing.T) {
	primary := &fakeSource{records: winners(4)}
	fallback := &fakeSource{records: winners(1)}
	agg := NewWinnersAggregator(primary, fallback, zerolog.Nop())

	require.NoError(t, agg.Refresh(context.Background()))

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "the fallback must not be called when the primary succeeds")
	assert.Len(t, agg.All(), 4)
	assert.NoError(t, agg.Err())
}

func TestRefreshFallsBackOnce(t *testing.T) {
	primary := &fakeSource{err: errors.New("boom")}
	fallback := &fakeSource{records: winners(3)}
	agg := NewWinnersAggregator(primary, fallback, zerolog.Nop())

	require.NoError(t, agg.Refresh(context.Background()))

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls, "exactly one fallback call per failed primary")
	assert.Len(t, agg.All(), 3)
	assert.NoError(t, agg.Err(), "a successful fallback surfaces no error")
}

func TestRefreshTotalFailureRetainsList(t *testing.T) {
	ctx := context.Background()
	primary := &fakeSource{records: winners(4)}
	fallback := &fakeSource{}
	agg := NewWinnersAggregator(primary, fallback, zerolog.Nop())

	require.NoError(t, agg.Refresh(ctx))
	require.Len(t, agg.All(), 4)

	primary.err = errors.New("down")
	fallback.err = errors.New("also down")

	err := agg.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrFeedUnavailable))
	assert.True(t, apperrors.IsCode(agg.Err(), apperrors.ErrFeedUnavailable))
	assert.Len(t, agg.All(), 4, "total failure must keep the previously loaded list")
}

func TestRefreshTotalFailureWithNoHistory(t *testing.T) {
	primary := &fakeSource{err: errors.New("down")}
	fallback := &fakeSource{err: errors.New("down")}
	agg := NewWinnersAggregator(primary, fallback, zerolog.Nop())

	require.Error(t, agg.Refresh(context.Background()))
	assert.Empty(t, agg.All(), "no prior success means the list stays empty")
}

func TestRevealPagination(t *testing.T) {
	primary := &fakeSource{records: winners(6)}
	agg := NewWinnersAggregator(primary, &fakeSource{}, zerolog.Nop())
	require.NoError(t, agg.Refresh(context.Background()))

	assert.Len(t, agg.Visible(), 2, "initial reveal is 2")
	assert.True(t, agg.CanShowMore())

	agg.ShowMore()
	assert.Len(t, agg.Visible(), 5, "one step reveals up to 3 more")
	assert.True(t, agg.CanShowMore())

	agg.ShowMore()
	assert.Len(t, agg.Visible(), 6, "the second step caps at 6")
	assert.False(t, agg.CanShowMore())

	agg.ShowMore()
	assert.Len(t, agg.Visible(), 6, "show more past the cap is a no-op")

	agg.ShowLess()
	assert.Len(t, agg.Visible(), 2)
	assert.True(t, agg.CanShowMore())
}

func TestRevealCapsAtCapEvenWithMoreRecords(t *testing.T) {
	primary := &fakeSource{records: winners(10)}
	agg := NewWinnersAggregator(primary, &fakeSource{}, zerolog.Nop())
	require.NoError(t, agg.Refresh(context.Background()))

	agg.ShowMore()
	agg.ShowMore()
	agg.ShowMore()
	assert.Len(t, agg.Visible(), 6, "the global cap wins over the feed length")
	assert.False(t, agg.CanShowMore())
}

func TestRevealBoundedByAvailable(t *testing.T) {
	primary := &fakeSource{records: winners(3)}
	agg := NewWinnersAggregator(primary, &fakeSource{}, zerolog.Nop())
	require.NoError(t, agg.Refresh(context.Background()))

	assert.Len(t, agg.Visible(), 2)
	assert.True(t, agg.CanShowMore())

	agg.ShowMore()
	assert.Len(t, agg.Visible(), 3)
	assert.False(t, agg.CanShowMore())
}

func TestRefreshResetsReveal(t *testing.T) {
	primary := &fakeSource{records: winners(6)}
	agg := NewWinnersAggregator(primary, &fakeSource{}, zerolog.Nop())
	require.NoError(t, agg.Refresh(context.Background()))

	agg.ShowMore()
	agg.ShowMore()
	require.Len(t, agg.Visible(), 6)

	require.NoError(t, agg.Refresh(context.Background()))
	assert.Len(t, agg.Visible(), 2, "every successful refresh resets the reveal")
}

func TestVisibleWithEmptyList(t *testing.T) {
	agg := NewWinnersAggregator(&fakeSource{}, &fakeSource{}, zerolog.Nop())
	assert.Empty(t, agg.Visible())
	assert.False(t, agg.CanShowMore())
}
