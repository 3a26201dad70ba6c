package wheel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDrawConvergence(t *testing.T) {
	table := PrizeTable{
		{Label: "a", Amount: decimal.RequireFromString("0.1"), Chain: ChainBase, Token: "ETH", Weight: 1},
		{Label: "b", Amount: decimal.RequireFromString("0.2"), Chain: ChainCelo, Token: "CELO", Weight: 1},
		{Label: "none", Amount: decimal.Zero, Chain: ChainNone, Weight: 2},
	}

	selector := NewSelector(rand.NewSource(42))

	const draws = 100000
	counts := make([]int, len(table))
	for i := 0; i < draws; i++ {
		idx := selector.Draw(table)
		if idx < 0 || idx >= len(table) {
			t.Fatalf("draw returned out-of-range index %d", idx)
		}
		counts[idx]++
	}

	// index 2 carries half the total weight
	freq := float64(counts[2]) / draws
	if math.Abs(freq-0.5) > 0.01 {
		t.Errorf("expected index 2 frequency near 0.5, got %f", freq)
	}

	freq0 := float64(counts[0]) / draws
	if math.Abs(freq0-0.25) > 0.01 {
		t.Errorf("expected index 0 frequency near 0.25, got %f", freq0)
	}
}

func TestDrawZeroWeights(t *testing.T) {
	table := PrizeTable{
		{Label: "a", Amount: decimal.RequireFromString("0.1"), Chain: ChainBase, Weight: 0},
		{Label: "none", Amount: decimal.Zero, Chain: ChainNone, Weight: 0},
	}

	selector := NewSelector(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if idx := selector.Draw(table); idx != 0 {
			t.Fatalf("zero-weight table must always return index 0, got %d", idx)
		}
	}
}

func TestDrawEmptyTable(t *testing.T) {
	selector := NewSelector(rand.NewSource(1))
	if idx := selector.Draw(nil); idx != 0 {
		t.Errorf("empty table must return index 0, got %d", idx)
	}
}

func TestPrizeTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   PrizeTable
		wantErr bool
	}{
		{
			name:    "default table",
			table:   DefaultPrizeTable(),
			wantErr: false,
		},
		{
			name:    "empty table",
			table:   PrizeTable{},
			wantErr: true,
		},
		{
			name: "no no-win entry",
			table: PrizeTable{
				{Label: "a", Amount: decimal.RequireFromString("0.1"), Chain: ChainBase, Weight: 1},
			},
			wantErr: true,
		},
		{
			name: "multiple no-win entries",
			table: PrizeTable{
				{Label: "x", Amount: decimal.Zero, Chain: ChainNone, Weight: 1},
				{Label: "y", Amount: decimal.Zero, Chain: ChainNone, Weight: 1},
			},
			wantErr: true,
		},
		{
			name: "no-win entry with amount",
			table: PrizeTable{
				{Label: "x", Amount: decimal.RequireFromString("1"), Chain: ChainNone, Weight: 1},
			},
			wantErr: true,
		},
		{
			name: "negative weight",
			table: PrizeTable{
				{Label: "a", Amount: decimal.RequireFromString("0.1"), Chain: ChainBase, Weight: -1},
				{Label: "none", Amount: decimal.Zero, Chain: ChainNone, Weight: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultPrizeTableShape(t *testing.T) {
	table := DefaultPrizeTable()
	if len(table) != 11 {
		t.Fatalf("expected 11 entries, got %d", len(table))
	}
	last := table[len(table)-1]
	if last.Chain != ChainNone || !last.Amount.IsZero() {
		t.Errorf("last entry must be the no-win entry, got %+v", last)
	}
	if last.IsReward() {
		t.Errorf("no-win entry must not be a reward")
	}
	if !table[0].IsReward() {
		t.Errorf("first entry must be a reward")
	}

	// the deployed weight vector; the heavy mass sits on the no-win entry,
	// not on the 1 CELO prize next to it
	wantWeights := []float64{20, 5, 0.25, 0.001, 0, 25, 10, 2, 0.1, 0, 37.649}
	for i, want := range wantWeights {
		if table[i].Weight != want {
			t.Errorf("entry %d (%s): weight = %v, want %v", i, table[i].Label, table[i].Weight, want)
		}
	}
}

func TestDefaultPrizeTableDrawDistribution(t *testing.T) {
	table := DefaultPrizeTable()
	selector := NewSelector(rand.NewSource(42))

	const draws = 100000
	counts := make([]int, len(table))
	for i := 0; i < draws; i++ {
		counts[selector.Draw(table)]++
	}

	if counts[9] != 0 {
		t.Errorf("1 CELO carries zero weight and must never be drawn, got %d draws", counts[9])
	}

	// "Thanks" holds 37.649 of the 100 total weight
	freq := float64(counts[10]) / draws
	if math.Abs(freq-0.37649) > 0.01 {
		t.Errorf("expected no-win frequency near 0.376, got %f", freq)
	}
}
