// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakingrewards/thor"
)

// Config is the user supplied genesis.
type Config struct {
	Owner           thor.Address `yaml:"owner" json:"owner"`
	Pool            thor.Address `yaml:"pool" json:"pool"`
	RewardsDuration uint64       `yaml:"rewardsDuration" json:"rewardsDuration"`
	StakingToken    Token        `yaml:"stakingToken" json:"stakingToken"`
	// optional, defaults to the staking token
	RewardsToken *Token `yaml:"rewardsToken,omitempty" json:"rewardsToken,omitempty"`
}

// Token describes a token created at genesis.
type Token struct {
	Address     thor.Address `yaml:"address" json:"address"`
	Name        string       `yaml:"name" json:"name"`
	Symbol      string       `yaml:"symbol" json:"symbol"`
	Decimals    uint8        `yaml:"decimals" json:"decimals"`
	Allocations []Allocation `yaml:"allocations,omitempty" json:"allocations,omitempty"`
}

// Allocation is an initial token balance.
type Allocation struct {
	Address thor.Address    `yaml:"address" json:"address"`
	Amount  HexOrDecimal256 `yaml:"amount" json:"amount"`
}

// LoadConfig reads a YAML genesis file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML genesis.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Tokens returns the staking and the rewards token, which may be the same.
func (c *Config) Tokens() (staking, rewards *Token) {
	if c.RewardsToken == nil {
		return &c.StakingToken, &c.StakingToken
	}
	return &c.StakingToken, c.RewardsToken
}

func (c *Config) Validate() error {
	if c.Owner.IsZero() {
		return errors.New("owner is required")
	}
	if c.Pool.IsZero() {
		return errors.New("pool address is required")
	}
	staking, rewards := c.Tokens()
	for _, t := range []*Token{staking, rewards} {
		if t.Address.IsZero() {
			return errors.New("token address is required")
		}
		if t.Address == c.Pool {
			return errors.Errorf("token %v shares the pool address", t.Address)
		}
	}
	if staking != rewards && staking.Address == rewards.Address {
		if staking.Name != rewards.Name || staking.Symbol != rewards.Symbol || staking.Decimals != rewards.Decimals {
			return errors.Errorf("conflicting metadata for token %v", staking.Address)
		}
	}
	return nil
}

// HexOrDecimal256 is a 256-bit amount written as hex (0x prefixed) or decimal.
type HexOrDecimal256 math.HexOrDecimal256

func (i *HexOrDecimal256) set(s string) error {
	bigint, ok := math.ParseBig256(s)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", s)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		if err = (*big.Int)(i).UnmarshalJSON(input); err != nil {
			return err
		}
		return nil
	}
	return i.set(hex)
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(i)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalYAML accepts plain and quoted scalars alike.
func (i *HexOrDecimal256) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	return i.set(node.Value)
}

// MarshalYAML writes the decimal form.
func (i HexOrDecimal256) MarshalYAML() (any, error) {
	return (*big.Int)(&i).String(), nil
}

// EncodeRLP implements rlp.Encoder.
func (i *HexOrDecimal256) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, (*big.Int)(i))
}

// Uint256 converts the amount, failing on values that do not fit.
func (i *HexOrDecimal256) Uint256() (*uint256.Int, error) {
	if (*big.Int)(i).Sign() < 0 {
		return nil, errors.New("negative amount")
	}
	v, overflow := uint256.FromBig((*big.Int)(i))
	if overflow {
		return nil, errors.New("amount exceeds 256 bits")
	}
	return v, nil
}
