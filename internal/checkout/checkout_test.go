package checkout

import (
	"testing"

	"storefront/internal/validation"
)

func TestAggregatorPriority(t *testing.T) {
	a := NewAggregator()

	if _, ok := a.Top(); ok {
		t.Fatal("empty aggregator should have no top entry")
	}

	a.SetCheckoutErrors(validation.Errors{{Field: "shipping", Message: "required"}}, "shipping method", 5)
	a.SetCheckoutErrors(validation.Errors{{Field: "postcode", Message: "digits"}}, "address empty", 3)
	a.SetCheckoutErrors(validation.Errors{{Field: "payment", Message: "required"}}, "payment", 5)

	entries := a.Entries()
	want := []string{"address empty", "shipping method", "payment"}
	if len(entries) != len(want) {
		t.Fatalf("len(Entries) = %d, want %d", len(entries), len(want))
	}
	for i, key := range want {
		if entries[i].Key != key {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].Key, key)
		}
	}

	a.SetCheckoutErrors(nil, "address empty", 3)
	top, ok := a.Top()
	if !ok || top.Key != "shipping method" {
		t.Errorf("Top() = %+v, want shipping method", top)
	}

	a.Clear("shipping method")
	a.Clear("payment")
	if len(a.Entries()) != 0 {
		t.Error("Clear should remove entries")
	}
}
