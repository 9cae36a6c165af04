package airdrop

import (
	"math/big"
	"testing"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	req := Request{Total: 100, Mode: ModeProRata, Exclude: []string{"ecash:qx", "qy"}}
	a, err := req.Fingerprint([]Holder{h("ecash:qa", 1), h("ecash:qb", 2)})
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	b, err := req.Fingerprint([]Holder{h("ecash:qb", 2), h("ECASH:QA", 1)})
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if a != b {
		t.Error("holder order should not change the fingerprint")
	}

	req2 := Request{Total: 100, Mode: ModeProRata, Exclude: []string{"ecash:qy", "ecash:qx", "ecash:qx"}}
	c, _ := req2.Fingerprint([]Holder{h("ecash:qa", 1), h("ecash:qb", 2)})
	if a != c {
		t.Error("exclude order and duplicates should not change the fingerprint")
	}
}

func TestPlan_StaleFor(t *testing.T) {
	holders := []Holder{h("ecash:qa", 60), h("ecash:qb", 40)}
	req := Request{Total: 100, Mode: ModeEqual}
	plan, err := req.Distribute(holders)
	if err != nil {
		t.Fatalf("Distribute() error: %v", err)
	}
	if plan.StaleFor(req, holders) {
		t.Fatal("plan should not be stale for its own inputs")
	}

	changes := []struct {
		name    string
		req     Request
		holders []Holder
	}{
		{"total", Request{Total: 101, Mode: ModeEqual}, holders},
		{"mode", Request{Total: 100, Mode: ModeProRata}, holders},
		{"min eligible", Request{Total: 100, Mode: ModeEqual, MinEligible: 50}, holders},
		{"exclude", Request{Total: 100, Mode: ModeEqual, Exclude: []string{"ecash:qa"}}, holders},
		{"min payout", Request{Total: 100, Mode: ModeEqual, MinPayout: 1}, holders},
		{"holder balance", req, []Holder{h("ecash:qa", 61), h("ecash:qb", 40)}},
		{"holder added", req, append([]Holder{h("ecash:qc", 1)}, holders...)},
		{"malformed holders", req, []Holder{{Address: "ecash:qa", Balance: big.NewInt(-1)}}},
	}
	for _, c := range changes {
		t.Run(c.name, func(t *testing.T) {
			if !plan.StaleFor(c.req, c.holders) {
				t.Errorf("plan should be stale after changing %s", c.name)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	out, err := Aggregate([]Holder{h("qa", 1), h("ecash:qb", 2), h("ecash:qa", 3)})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Address != "ecash:qa" || out[0].Balance.Int64() != 4 {
		t.Errorf("out[0] = %+v, want ecash:qa 4", out[0])
	}
}
