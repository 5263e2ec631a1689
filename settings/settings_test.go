package settings

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeSchema(t *testing.T) {
	cases := []struct {
		names  []string
		expect string
		err    bool
	}{
		{[]string{"os", "compiler", "version"}, "__params==compiler==os==version", false},
		{[]string{"version", "os", "compiler"}, "__params==compiler==os==version", false},
		{[]string{"arch"}, "__params==arch", false},
		{[]string{}, "", true},
		{[]string{"os", "os"}, "", true},
		{[]string{"os name"}, "", true},
		{[]string{"a==b"}, "", true},
	}

	for i, c := range cases {
		got, err := EncodeSchema(c.names)
		if c.err {
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("case %d: expected ErrInvalidFormat, got: %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %d: unexpected error: %s", i, err)
			continue
		}
		if got != c.expect {
			t.Errorf("case %d: token mismatch. expected: %q, got: %q", i, c.expect, got)
		}
	}
}

func TestDecodeSchema(t *testing.T) {
	names, err := DecodeSchema("__params==compiler==os==version")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"compiler", "os", "version"}, names); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	bad := []string{
		"os=osx==compiler=clang",
		"__params",
		"params==os",
		"",
	}
	for _, token := range bad {
		if _, err := DecodeSchema(token); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("token %q: expected ErrInvalidFormat, got: %v", token, err)
		}
	}
}

func TestAssignmentRoundTrip(t *testing.T) {
	cases := []Assignment{
		{"os": "osx", "compiler": "clang", "version": "1.0"},
		{"arch": "x86-64"},
		{"target": "release", "libc": "musl_1.2"},
	}

	for i, a := range cases {
		token, err := EncodeAssignment(a)
		if err != nil {
			t.Errorf("case %d: unexpected encode error: %s", i, err)
			continue
		}
		got, err := DecodeAssignment(token)
		if err != nil {
			t.Errorf("case %d: unexpected decode error: %s", i, err)
			continue
		}
		if diff := cmp.Diff(a, got); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestEncodeAssignmentCanonical(t *testing.T) {
	// encoding must not depend on the order keys were added
	a := Assignment{}
	b := Assignment{}
	pairs := [][2]string{{"os", "linux"}, {"compiler", "gcc"}, {"version", "1.0"}}
	for _, p := range pairs {
		a[p[0]] = p[1]
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		b[pairs[i][0]] = pairs[i][1]
	}

	tokenA, err := EncodeAssignment(a)
	if err != nil {
		t.Fatal(err)
	}
	tokenB, err := EncodeAssignment(b)
	if err != nil {
		t.Fatal(err)
	}
	if tokenA != tokenB {
		t.Errorf("tokens differ for equal assignments: %q != %q", tokenA, tokenB)
	}
	if tokenA != "compiler=gcc==os=linux==version=1.0" {
		t.Errorf("unexpected canonical token: %q", tokenA)
	}
}

func TestEncodeAssignmentErrors(t *testing.T) {
	cases := []Assignment{
		{},
		{"os name": "osx"},
		{"os": "o s x"},
		{"os": "a==b"},
		{"a=b": "c"},
	}
	for i, a := range cases {
		if _, err := EncodeAssignment(a); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("case %d: expected ErrInvalidFormat, got: %v", i, err)
		}
	}
}

func TestDecodeAssignmentRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"__params==compiler==os",
		"os",
		"os=",
		"=osx",
		"os=osx==",
		"os=osx==os=linux",
		"os=osx=extra",
		"bin",
	}
	for _, token := range bad {
		if _, err := DecodeAssignment(token); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("token %q: expected ErrInvalidFormat, got: %v", token, err)
		}
	}
}

func TestParseAssignment(t *testing.T) {
	cases := []struct {
		in     string
		expect Assignment
		err    bool
	}{
		{"os=osx,compiler=clang,version=1.0", Assignment{"os": "osx", "compiler": "clang", "version": "1.0"}, false},
		{"os=osx,compiler=clang,", Assignment{"os": "osx", "compiler": "clang"}, false},
		{"arch=x86-64", Assignment{"arch": "x86-64"}, false},
		{"", nil, true},
		{"os", nil, true},
		{"os=osx,,compiler=clang", nil, true},
		{"os=osx,os=linux", nil, true},
		{"os==osx", nil, true},
	}

	for i, c := range cases {
		got, err := ParseAssignment(c.in)
		if c.err {
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("case %d: expected ErrInvalidFormat, got: %v", i, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %d: unexpected error: %s", i, err)
			continue
		}
		if diff := cmp.Diff(c.expect, got); diff != "" {
			t.Errorf("case %d: result mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestParseParams(t *testing.T) {
	got, err := ParseParams("version,os,compiler")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"compiler", "os", "version"}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "os,,compiler", "os,os", "o s"} {
		if _, err := ParseParams(bad); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("input %q: expected ErrInvalidFormat, got: %v", bad, err)
		}
	}
}

func TestAssignmentString(t *testing.T) {
	a := Assignment{"version": "1.0", "os": "osx", "compiler": "clang"}
	expect := "compiler=clang,os=osx,version=1.0"
	if a.String() != expect {
		t.Errorf("expected: %q, got: %q", expect, a.String())
	}
}
