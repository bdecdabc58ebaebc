package domain

import (
	"encoding/json"
	"testing"
)

func TestReductionDecodesStringsAndNumbers(t *testing.T) {
	cases := map[string]Reduction{
		`{"target_reduction":"30%"}`:   "30%",
		`{"target_reduction":30}`:      "30",
		`{"target_reduction":42.5}`:    "42.5",
		`{"target_reduction":null}`:    "",
		`{"target_reduction":true}`:    "",
		`{"target_reduction":{"a":1}}`: "",
		`{}`:                           "",
	}
	for raw, want := range cases {
		var fields ProjectFields
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", raw, err)
		}
		if fields.TargetReduction != want {
			t.Fatalf("Unmarshal(%s) reduction = %q, want %q", raw, fields.TargetReduction, want)
		}
	}
}
