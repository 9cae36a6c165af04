package airdrop

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/jln-wallet/tokencore/pkg/types"
)

// Holder validation errors.
var (
	ErrMalformedHolderBalance = errors.New("malformed holder balance")
	ErrMissingAddress         = errors.New("holder address is empty")
)

// maxBalanceBits bounds a holder balance so that total × balance and the
// sum of all balances stay within 256 bits.
const maxBalanceBits = 128

// Holder is one token holder's atomic balance as reported upstream.
// Holders are never modified by the distributor.
type Holder struct {
	Address string   `json:"address"`
	Balance *big.Int `json:"balance"`
}

// holder is a validated, address-normalized Holder.
type holder struct {
	address string
	balance *uint256.Int
}

// normalizeHolders validates the records and merges duplicate addresses,
// summing their balances. Addresses without a prefix get prefix. The
// result is in first-seen address order.
func normalizeHolders(records []Holder, prefix string) ([]holder, error) {
	out := make([]holder, 0, len(records))
	index := make(map[string]int, len(records))
	for i, r := range records {
		addr := types.NormalizeAddressPrefix(r.Address, prefix)
		if addr == "" {
			return nil, fmt.Errorf("%w: holder %d", ErrMissingAddress, i)
		}
		if r.Balance == nil {
			return nil, fmt.Errorf("%w: holder %d (%s) has no balance", ErrMalformedHolderBalance, i, addr)
		}
		if r.Balance.Sign() < 0 {
			return nil, fmt.Errorf("%w: holder %d (%s) has negative balance %s",
				ErrMalformedHolderBalance, i, addr, r.Balance)
		}
		if r.Balance.BitLen() > maxBalanceBits {
			return nil, fmt.Errorf("%w: holder %d (%s) balance exceeds %d bits",
				ErrMalformedHolderBalance, i, addr, maxBalanceBits)
		}
		bal, _ := uint256.FromBig(r.Balance)

		if j, ok := index[addr]; ok {
			sum := new(uint256.Int).Add(out[j].balance, bal)
			if sum.BitLen() > maxBalanceBits {
				return nil, fmt.Errorf("%w: aggregated balance of %s exceeds %d bits",
					ErrMalformedHolderBalance, addr, maxBalanceBits)
			}
			out[j].balance = sum
			continue
		}
		index[addr] = len(out)
		out = append(out, holder{address: addr, balance: bal})
	}
	return out, nil
}

// Aggregate validates holder records and merges duplicate addresses, as
// when balances come from per-output token queries. Addresses without a
// prefix get the active address prefix.
func Aggregate(records []Holder) ([]Holder, error) {
	hs, err := normalizeHolders(records, types.GetAddressPrefix())
	if err != nil {
		return nil, err
	}
	out := make([]Holder, len(hs))
	for i, h := range hs {
		out[i] = Holder{Address: h.address, Balance: h.balance.ToBig()}
	}
	return out, nil
}
