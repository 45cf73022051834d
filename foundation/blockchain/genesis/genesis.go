// Package genesis maintains access to the chain parameters every node of a
// network must agree on.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Default values for the chain parameters.
const (
	DefaultDifficulty   = 3
	DefaultMiningReward = 1.0
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	Difficulty   int       `json:"difficulty"`    // Number of leading 0 hex digits needed to solve the work problem.
	MiningReward float64   `json:"mining_reward"` // Reward for mining a block.
}

// Default returns the parameters used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Difficulty:   DefaultDifficulty,
		MiningReward: DefaultMiningReward,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default parameters. Fields missing from the file keep their default.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	if genesis.Difficulty < 0 || genesis.Difficulty > 64 {
		return Genesis{}, fmt.Errorf("difficulty out of range [0, 64]: %d", genesis.Difficulty)
	}

	if genesis.MiningReward < 0 {
		return Genesis{}, fmt.Errorf("mining reward can't be negative: %v", genesis.MiningReward)
	}

	return genesis, nil
}
