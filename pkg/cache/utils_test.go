package cache

import "testing"

func TestGenerateKeyWithParams(t *testing.T) {
	got := GenerateKeyWithParams("edgarpull:doc", "document", "abc")
	if got != "edgarpull:doc:document:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestHashKey(t *testing.T) {
	a := HashKey("https://www.sec.gov/Archives/edgar/data/1/a1/form13fInfoTable.xml")
	b := HashKey("https://www.sec.gov/Archives/edgar/data/1/a2/form13fInfoTable.xml")
	if a == b {
		t.Fatalf("distinct URLs must not collide")
	}
	if a != HashKey("https://www.sec.gov/Archives/edgar/data/1/a1/form13fInfoTable.xml") {
		t.Fatalf("hash must be deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("unexpected hash length %d", len(a))
	}
}
