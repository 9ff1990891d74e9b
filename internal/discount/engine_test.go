package discount

import (
	"errors"
	"regexp"
	"testing"

	"github.com/noah-isme/storefront-cart/internal/money"
)

func TestComputePercent(t *testing.T) {
	amount, total := Compute(money.Parse("£17"), 50)
	if got := amount.String(); got != "£8.5" {
		t.Fatalf("expected £8.5 discount, got %s", got)
	}
	if got := total.String(); got != "£8.5" {
		t.Fatalf("expected £8.5 total, got %s", got)
	}
}

func TestComputeZeroTotal(t *testing.T) {
	amount, total := Compute(money.Zero("£"), 20)
	if !amount.IsZero() || !total.IsZero() {
		t.Fatalf("expected zero amounts, got %s / %s", amount, total)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	reg := DefaultRegistry()
	for _, code := range []string{"EGBIE-GET50-PERCE-NTOFF", "egbie-get50-perce-ntoff", "  Egbie-Get50-Perce-Ntoff ", "egbieget50percentoff"} {
		d, ok := reg.Lookup(code)
		if !ok {
			t.Fatalf("expected %q to match", code)
		}
		if d.Percent != 50 {
			t.Fatalf("expected 50 percent, got %d", d.Percent)
		}
	}
	if _, ok := reg.Lookup("FOOBAR"); ok {
		t.Fatal("expected FOOBAR to be rejected")
	}
}

func TestNewRegistryDropsInvalid(t *testing.T) {
	reg := NewRegistry(map[string]int{"summer-sale": 15, "broken": 0, "greedy": 150, "": 10})
	if len(reg) != 1 {
		t.Fatalf("expected one entry, got %v", reg)
	}
	if d, ok := reg.Lookup("SUMMERSALE"); !ok || d.Percent != 15 {
		t.Fatalf("unexpected lookup result %+v %v", d, ok)
	}
}

func TestFormatInput(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"ABCDE":                   "ABCDE",
		"ABCDEF":                  "ABCDE-F",
		"AB-CDEFG-HIJ":            "ABCDE-FGHIJ",
		"EGBIEGET50PERCENTOFF":    "EGBIE-GET50-PERCE-NTOFF",
		"EGBIE-GET50-PERCE-NTOFF": "EGBIE-GET50-PERCE-NTOFF",
	}
	for in, want := range cases {
		if got := FormatInput(in); got != want {
			t.Fatalf("FormatInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerate(t *testing.T) {
	code, err := Generate(20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{5}(-[A-Z0-9]{5}){3}$`).MatchString(code) {
		t.Fatalf("unexpected code shape %q", code)
	}

	code, err = Generate(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("expected 8 characters including dash, got %q", code)
	}

	if _, err := Generate(0); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}
