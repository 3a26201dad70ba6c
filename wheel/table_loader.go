package wheel

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// prizeEntryFile is the YAML shape of one prize table row. Amounts are
// strings so fractional token values survive decoding exactly.
type prizeEntryFile struct {
	Label  string  `mapstructure:"label"`
	Amount string  `mapstructure:"amount"`
	Chain  string  `mapstructure:"chain"`
	Token  string  `mapstructure:"token"`
	Weight float64 `mapstructure:"weight"`
}

type prizeTableFile struct {
	Prizes []prizeEntryFile `mapstructure:"prizes"`
}

// LoadPrizeTable loads a prize table from a YAML file and validates it.
// Deployments that want the stock wheel skip this and use
// DefaultPrizeTable.
func LoadPrizeTable(configPath string) (PrizeTable, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read prize table: %w", err)
	}

	var file prizeTableFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prize table: %w", err)
	}

	table := make(PrizeTable, 0, len(file.Prizes))
	for i, entry := range file.Prizes {
		amount := decimal.Zero
		if entry.Amount != "" {
			var err error
			amount, err = decimal.NewFromString(entry.Amount)
			if err != nil {
				return nil, fmt.Errorf("invalid amount for prize %d (%s): %w", i, entry.Label, err)
			}
		}

		chain := Chain(entry.Chain)
		switch chain {
		case ChainNone, ChainBase, ChainCelo:
		default:
			return nil, fmt.Errorf("unknown chain %q for prize %d (%s)", entry.Chain, i, entry.Label)
		}

		table = append(table, PrizeTableEntry{
			Label:  entry.Label,
			Amount: amount,
			Chain:  chain,
			Token:  entry.Token,
			Weight: entry.Weight,
		})
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}
