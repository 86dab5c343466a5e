package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 || m[12] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}
