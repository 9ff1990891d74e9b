package snapshot

import (
	"testing"
)

func TestDecodeDiscardsIncompleteRecords(t *testing.T) {
	payload := []byte(`{"version":1,"records":[
		{"productIDName":"p1","currentQty":2,"currentPrice":"£4.50","selectorID":"p1-qty"},
		{"productIDName":"","currentQty":2,"currentPrice":"£4.50","selectorID":"p2-qty"},
		{"productIDName":"p3","currentQty":0,"currentPrice":"£4.50","selectorID":"p3-qty"},
		{"productIDName":"p4","currentQty":1,"currentPrice":"4.50","selectorID":"p4-qty"},
		{"productIDName":"p5","currentQty":1,"currentPrice":"£","selectorID":"p5-qty"}
	]}`)
	records, discarded, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].ProductIDName != "p1" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if discarded != 4 {
		t.Fatalf("expected 4 discarded, got %d", discarded)
	}
}

func TestDecodeRejectsOtherVersions(t *testing.T) {
	_, _, err := Decode([]byte(`{"version":2,"records":[]}`))
	if err != ErrVersion {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
	if _, _, err := Decode([]byte(`[{"productIDName":"p1"}]`)); err == nil {
		t.Fatalf("expected error for legacy array payload")
	}
	records, _, err := Decode(nil)
	if err != nil || records != nil {
		t.Fatalf("empty payload should decode to nothing, got %v %v", records, err)
	}
}

func TestEncodeDecodeKeepsRecords(t *testing.T) {
	in := []Record{{ProductIDName: "p1", CurrentQty: 3, CurrentPrice: "£10", SelectorID: "p1-qty"}}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, discarded, err := Decode(data)
	if err != nil || discarded != 0 {
		t.Fatalf("decode: %v discarded=%d", err, discarded)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("got %+v", out)
	}
	if IndexBySelector(out, "p1-qty") != 0 || IndexBySelector(out, "nope") != -1 {
		t.Fatalf("index lookup mismatch")
	}
}
