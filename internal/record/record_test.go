package record

import "testing"

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindFileOpen:    "file_open",
		KindLibLoad:     "lib_load",
		KindProcessExec: "process_exec",
		KindProcessExit: "process_exit",
		KindAPICall:     "api_call",
		Kind(99):        "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestKindValid(t *testing.T) {
	if !KindAPICall.Valid() {
		t.Error("KindAPICall should be valid")
	}
	if Kind(5).Valid() {
		t.Error("Kind(5) should not be valid")
	}
}
