// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
)

// config is the yaml shape of the staking parameters file. Amounts are
// decimal strings; omitted fields keep their defaults.
type config struct {
	MinSelfStake      string `yaml:"minSelfStake"`
	MaxDelegatedRatio string `yaml:"maxDelegatedRatio"`
	UnstakePeriod     uint64 `yaml:"unstakePeriod"`
	RewardRate        string `yaml:"rewardRate"`
	RewardReserve     string `yaml:"rewardReserve"`
	Owner             string `yaml:"owner"`
}

// loadParams reads the params file, falling back to defaults for every
// field it omits. An empty path yields pure defaults.
func loadParams(path string) (*staking.Params, *uint256.Int, common.Address, error) {
	params := staking.DefaultParams()
	rate := uint256.NewInt(0)
	var owner common.Address
	if path == "" {
		return params, rate, owner, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, common.Address{}, errors.Wrap(err, "failed to read config")
	}
	var cfg config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, common.Address{}, errors.Wrap(err, "failed to parse config")
	}

	if cfg.MinSelfStake != "" {
		if params.MinSelfStake, err = uint256.FromDecimal(cfg.MinSelfStake); err != nil {
			return nil, nil, common.Address{}, errors.Wrap(err, "minSelfStake")
		}
	}
	if cfg.MaxDelegatedRatio != "" {
		if params.MaxDelegatedRatio, err = uint256.FromDecimal(cfg.MaxDelegatedRatio); err != nil {
			return nil, nil, common.Address{}, errors.Wrap(err, "maxDelegatedRatio")
		}
	}
	if cfg.UnstakePeriod != 0 {
		params.UnstakePeriod = cfg.UnstakePeriod
	}
	if cfg.RewardRate != "" {
		if rate, err = uint256.FromDecimal(cfg.RewardRate); err != nil {
			return nil, nil, common.Address{}, errors.Wrap(err, "rewardRate")
		}
	}
	if cfg.RewardReserve != "" {
		if !common.IsHexAddress(cfg.RewardReserve) {
			return nil, nil, common.Address{}, errors.New("rewardReserve: invalid address")
		}
		params.RewardReserve = common.HexToAddress(cfg.RewardReserve)
	}
	if cfg.Owner != "" {
		if !common.IsHexAddress(cfg.Owner) {
			return nil, nil, common.Address{}, errors.New("owner: invalid address")
		}
		owner = common.HexToAddress(cfg.Owner)
	}
	return params, rate, owner, nil
}
