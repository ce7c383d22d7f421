package utils

import (
	"strings"
	"testing"
)

func TestSDumpSortsKeys(t *testing.T) {
	out := SDump(map[string]int{"b": 2, "a": 1})
	if ia, ib := strings.Index(out, `"a"`), strings.Index(out, `"b"`); ia < 0 || ib < 0 || ia > ib {
		t.Errorf("keys not sorted:\n%s", out)
	}
}
