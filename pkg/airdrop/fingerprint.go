package airdrop

import (
	"encoding/binary"
	"sort"

	"github.com/jln-wallet/tokencore/pkg/crypto"
	"github.com/jln-wallet/tokencore/pkg/types"
)

// fingerprintDomain separates plan digests from any other use of the hash.
const fingerprintDomain = "tokencore/airdrop-plan/v1"

// Fingerprint digests the request together with the holder set. Two calls
// return the same digest iff they would produce the same plan inputs:
// holder order and duplicate splitting do not matter.
func (r Request) Fingerprint(holders []Holder) (crypto.Digest, error) {
	hs, err := normalizeHolders(holders, r.prefix())
	if err != nil {
		return crypto.Digest{}, err
	}
	return r.fingerprint(hs), nil
}

func (r Request) fingerprint(hs []holder) crypto.Digest {
	fields := [][]byte{
		[]byte(fingerprintDomain),
		u64(uint64(r.Total)),
		{byte(r.Mode)},
		u64(uint64(r.MinEligible)),
		u64(uint64(r.MinPayout)),
	}

	excl := make([]string, 0, len(r.Exclude))
	seen := make(map[string]struct{}, len(r.Exclude))
	prefix := r.prefix()
	for _, a := range r.Exclude {
		n := types.NormalizeAddressPrefix(a, prefix)
		if _, ok := seen[n]; ok || n == "" {
			continue
		}
		seen[n] = struct{}{}
		excl = append(excl, n)
	}
	sort.Strings(excl)
	fields = append(fields, u64(uint64(len(excl))))
	for _, a := range excl {
		fields = append(fields, []byte(a))
	}

	sorted := make([]holder, len(hs))
	copy(sorted, hs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].address < sorted[j].address })
	fields = append(fields, u64(uint64(len(sorted))))
	for _, h := range sorted {
		b := h.balance.Bytes32()
		fields = append(fields, []byte(h.address), b[:])
	}
	return crypto.HashFields(fields...)
}

func u64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}
