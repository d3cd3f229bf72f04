package util

import (
	"github.com/google/go-cmp/cmp"
	"runtime"
	"testing"
)

// CmpStr compares two strings and fails the test if they are not equal
func CmpStr(t *testing.T, expected, actual string) {
	t.Helper()
	_, file, line, _ := runtime.Caller(1)
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("\nTest %q failed at %s:%d\nDiff (-expected +actual):\n%s", t.Name(), file, line, diff)
	}
}
