// Package airdrop computes how a total amount is split across eligible
// token holders.
//
// Every non-empty plan accounts for each atomic unit of the total: the
// payouts always sum to exactly Request.Total.
package airdrop

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/jln-wallet/tokencore/pkg/amount"
	"github.com/jln-wallet/tokencore/pkg/crypto"
	"github.com/jln-wallet/tokencore/pkg/types"
	"github.com/rs/zerolog"
)

// Mode selects how the total is split.
type Mode uint8

const (
	// ModeEqual gives every eligible holder the same payout.
	ModeEqual Mode = iota
	// ModeProRata pays each holder in proportion to its balance.
	ModeProRata
)

// ErrUnknownMode is returned for a Mode outside the defined set.
var ErrUnknownMode = errors.New("unknown distribution mode")

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeEqual:
		return "equal"
	case ModeProRata:
		return "prorata"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// MarshalText encodes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeEqual && m != ModeProRata {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses "equal" or "prorata" (also "pro-rata", "proportional").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal":
		return ModeEqual, nil
	case "prorata", "pro-rata", "proportional":
		return ModeProRata, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Request holds the parameters of one distribution.
type Request struct {
	Total       amount.Atomic
	Mode        Mode
	MinEligible amount.Atomic // holders below this balance are not eligible
	Exclude     []string      // addresses never paid, e.g. the issuer
	MinPayout   amount.Atomic // drop recipients whose payout would fall below this; 0 disables

	// Prefix is assumed for addresses given without one. Empty means the
	// active prefix from types.SetAddressPrefix.
	Prefix string
}

func (r Request) prefix() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	return types.GetAddressPrefix()
}

// Payout is one recipient's share.
type Payout struct {
	Address string        `json:"address"`
	Balance *big.Int      `json:"balance"`
	Amount  amount.Atomic `json:"amount"`
}

// Plan is the result of a distribution. Plans are values: when any request
// parameter or the holder set changes, compute a new plan.
type Plan struct {
	Mode          Mode          `json:"mode"`
	Total         amount.Atomic `json:"total"`
	Payouts       []Payout      `json:"payouts"`
	EligibleCount int           `json:"eligible_count"`
	Dropped       int           `json:"dropped,omitempty"` // eligible holders cut by MinPayout
	Fingerprint   crypto.Digest `json:"fingerprint"`
}

// IsEmpty reports whether the plan pays nobody.
func (p *Plan) IsEmpty() bool {
	return len(p.Payouts) == 0
}

// Sum returns the total of all payouts.
func (p *Plan) Sum() amount.Atomic {
	var s amount.Atomic
	for _, po := range p.Payouts {
		s += po.Amount
	}
	return s
}

// Share returns payout i as a percentage of the total, for display.
func (p *Plan) Share(i int) string {
	return amount.Percent(p.Payouts[i].Amount, p.Total, 2)
}

// StaleFor reports whether the plan was computed for a different request
// or holder set.
func (p *Plan) StaleFor(req Request, holders []Holder) bool {
	fp, err := req.Fingerprint(holders)
	if err != nil {
		return true
	}
	return fp != p.Fingerprint
}

// Distributor computes distribution plans. It is stateless apart from its
// logger and safe for concurrent use.
type Distributor struct {
	logger zerolog.Logger
}

// NewDistributor creates a distributor that logs through logger.
func NewDistributor(logger zerolog.Logger) *Distributor {
	return &Distributor{logger: logger}
}

// Distribute computes the plan for total split by mode over holders.
// Holders below minEligible or listed in exclude get nothing.
func Distribute(total amount.Atomic, mode Mode, holders []Holder, minEligible amount.Atomic, exclude []string) (*Plan, error) {
	req := Request{Total: total, Mode: mode, MinEligible: minEligible, Exclude: exclude}
	return req.Distribute(holders)
}

// Distribute computes the plan for the request without logging.
func (r Request) Distribute(holders []Holder) (*Plan, error) {
	return NewDistributor(zerolog.Nop()).Distribute(r, holders)
}

// Distribute computes the plan for req over holders.
//
// Malformed holder records fail the whole call. An empty eligible set or a
// zero total yields an empty plan, not an error.
func (d *Distributor) Distribute(req Request, records []Holder) (*Plan, error) {
	if req.Mode != ModeEqual && req.Mode != ModeProRata {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(req.Mode))
	}
	hs, err := normalizeHolders(records, req.prefix())
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Mode:        req.Mode,
		Total:       req.Total,
		Payouts:     []Payout{},
		Fingerprint: req.fingerprint(hs),
	}

	eligible := req.eligible(hs)
	plan.EligibleCount = len(eligible)
	if len(eligible) == 0 || req.Total == 0 {
		d.logger.Debug().
			Str("mode", req.Mode.String()).
			Uint64("total", uint64(req.Total)).
			Int("eligible", len(eligible)).
			Msg("Distribution plan is empty")
		return plan, nil
	}

	recipients, amounts := req.allocate(eligible)
	for i, h := range recipients {
		plan.Payouts = append(plan.Payouts, Payout{
			Address: h.address,
			Balance: h.balance.ToBig(),
			Amount:  amounts[i],
		})
	}
	plan.Dropped = len(eligible) - len(recipients)

	d.logger.Debug().
		Str("mode", req.Mode.String()).
		Uint64("total", uint64(req.Total)).
		Int("eligible", plan.EligibleCount).
		Int("recipients", len(plan.Payouts)).
		Int("dropped", plan.Dropped).
		Str("fingerprint", plan.Fingerprint.String()).
		Msg("Distribution plan computed")
	return plan, nil
}

// eligible filters holders by balance and exclusion and returns them in
// payout order: balance descending, ties by address ascending.
func (r Request) eligible(hs []holder) []holder {
	excluded := make(map[string]struct{}, len(r.Exclude))
	prefix := r.prefix()
	for _, a := range r.Exclude {
		excluded[types.NormalizeAddressPrefix(a, prefix)] = struct{}{}
	}
	minBal := uint256.NewInt(uint64(r.MinEligible))

	out := make([]holder, 0, len(hs))
	for _, h := range hs {
		if h.balance.IsZero() || h.balance.Lt(minBal) {
			continue
		}
		if _, ok := excluded[h.address]; ok {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].balance.Cmp(out[j].balance); c != 0 {
			return c > 0
		}
		return out[i].address < out[j].address
	})
	return out
}

// allocate splits the total over the ordered eligible set, applying the
// MinPayout cut. It returns the recipients kept and their amounts.
func (r Request) allocate(set []holder) ([]holder, []amount.Atomic) {
	if r.Mode == ModeEqual {
		if r.MinPayout > 0 {
			// k holders each get at least total/k, so keep the largest k
			// with total/k >= MinPayout.
			k := uint64(r.Total) / uint64(r.MinPayout)
			if k < uint64(len(set)) {
				set = set[:k]
			}
		}
		return set, splitEqual(r.Total, len(set))
	}

	amounts := splitProRata(r.Total, set)
	for r.MinPayout > 0 && len(set) > 0 {
		kept := make([]holder, 0, len(set))
		for i, h := range set {
			if amounts[i] >= r.MinPayout {
				kept = append(kept, h)
			}
		}
		if len(kept) == len(set) {
			break
		}
		set = kept
		amounts = splitProRata(r.Total, set)
	}
	return set, amounts
}

// splitEqual gives each of n recipients total/n and hands the remainder
// out one unit at a time from the front of the order.
func splitEqual(total amount.Atomic, n int) []amount.Atomic {
	if n == 0 {
		return nil
	}
	base := uint64(total) / uint64(n)
	rem := uint64(total) % uint64(n)
	out := make([]amount.Atomic, n)
	for i := range out {
		out[i] = amount.Atomic(base)
		if uint64(i) < rem {
			out[i]++
		}
	}
	return out
}

// splitProRata gives each holder floor(total × balance / Σbalance) and
// distributes the flooring leftover to the largest fractional remainders,
// ties resolved by payout order.
func splitProRata(total amount.Atomic, set []holder) []amount.Atomic {
	if len(set) == 0 {
		return nil
	}
	sum := new(uint256.Int)
	for _, h := range set {
		sum.Add(sum, h.balance)
	}

	t := uint256.NewInt(uint64(total))
	out := make([]amount.Atomic, len(set))
	rems := make([]*uint256.Int, len(set))
	var allocated uint64
	for i, h := range set {
		prod := new(uint256.Int).Mul(t, h.balance)
		q := new(uint256.Int).Div(prod, sum)
		rems[i] = new(uint256.Int).Mod(prod, sum)
		out[i] = amount.Atomic(q.Uint64())
		allocated += q.Uint64()
	}

	leftover := uint64(total) - allocated
	if leftover == 0 {
		return out
	}
	order := make([]int, len(set))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rems[order[a]].Gt(rems[order[b]])
	})
	for _, i := range order[:leftover] {
		out[i]++
	}
	return out
}
