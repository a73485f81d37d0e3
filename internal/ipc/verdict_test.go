package ipc

import (
	"bytes"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	cases := []Record{
		{ExitCode: 0, Stdout: []byte("hello\nworld"), Stderr: nil},
		{ExitCode: -109, Stdout: nil, Stderr: []byte("bash: foo: command not found\n")},
		{ExitCode: 7, Stdout: []byte("with\x00a nul and\r\nCRLF"), Stderr: []byte("")},
		{ExitCode: -1, Stdout: bytes.Repeat([]byte{'x', '\n', 0}, 100), Stderr: bytes.Repeat([]byte{'y'}, 50)},
	}

	for i, want := range cases {
		encoded := want.Encode()
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if got.ExitCode != want.ExitCode {
			t.Errorf("case %d: exit code = %d, want %d", i, got.ExitCode, want.ExitCode)
		}
		if !bytes.Equal(got.Stdout, want.Stdout) && !(len(got.Stdout) == 0 && len(want.Stdout) == 0) {
			t.Errorf("case %d: stdout mismatch:\n got=%q\nwant=%q", i, got.Stdout, want.Stdout)
		}
		if !bytes.Equal(got.Stderr, want.Stderr) && !(len(got.Stderr) == 0 && len(want.Stderr) == 0) {
			t.Errorf("case %d: stderr mismatch:\n got=%q\nwant=%q", i, got.Stderr, want.Stderr)
		}
	}
}

func TestVerdictExitCodeRoundTrip(t *testing.T) {
	if got := VerdictFromExitCode(ExitInteractive); got != VerdictInteractive {
		t.Errorf("ExitInteractive -> %v, want VerdictInteractive", got)
	}
	if got := VerdictFromExitCode(ExitUserError); got != VerdictInvalidUserError {
		t.Errorf("ExitUserError -> %v, want VerdictInvalidUserError", got)
	}
	if got := VerdictFromExitCode(ExitAIHelp); got != VerdictInvalidAIHelp {
		t.Errorf("ExitAIHelp -> %v, want VerdictInvalidAIHelp", got)
	}
	if got := VerdictFromExitCode(0); got != VerdictValid {
		t.Errorf("0 -> %v, want VerdictValid", got)
	}
	if got := VerdictFromExitCode(ExitOtherFailure); got != VerdictOtherFailure {
		t.Errorf("ExitOtherFailure -> %v, want VerdictOtherFailure", got)
	}
	if got := VerdictValid.ExitCode(42); got != 42 {
		t.Errorf("VerdictValid.ExitCode(42) = %d, want 42", got)
	}
	if got := VerdictOtherFailure.ExitCode(0); got != ExitOtherFailure {
		t.Errorf("VerdictOtherFailure.ExitCode(0) = %d, want %d", got, ExitOtherFailure)
	}
}

func TestIsSystemPrefixed(t *testing.T) {
	cases := map[string]bool{
		"CWD:/home/x":             true,
		"STATUS":                  true,
		"BASH_FAILED:1:ls -z:/tmp": true,
		"QUERY:how do i":          false,
		"rm -rf /":                false,
	}
	for in, want := range cases {
		if got := IsSystemPrefixed(in); got != want {
			t.Errorf("IsSystemPrefixed(%q) = %v, want %v", in, got, want)
		}
	}
}
