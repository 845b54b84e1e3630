// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Maxim Levchenko (WoozyMasta)
// Source: github.com/woozymasta/zipstream

package zipstream

import (
	"errors"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "slash", in: "/", want: ""},
		{name: "dot", in: ".", want: ""},
		{name: "clean", in: "assets/img/logo.png", want: "assets/img/logo.png"},
		{name: "windows", in: `.\assets\img\logo.png`, want: "assets/img/logo.png"},
		{name: "trailing separator", in: "assets/img/", want: "assets/img"},
		{name: "dot segments", in: "./a/../b//c.txt", want: "b/c.txt"},
		{name: "traversal", in: "../../etc/passwd", want: "etc/passwd"},
		{name: "spaces", in: "  report.txt  ", want: "report.txt"},
		{name: "rooted", in: "/var/log/app.log", want: "var/log/app.log"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizePath(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizePath(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeArchiveEntryPath(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		got, err := normalizeArchiveEntryPath(`.\assets/img\logo.png`)
		if err != nil {
			t.Fatalf("normalizeArchiveEntryPath: %v", err)
		}

		want := "assets/img/logo.png"
		if got != want {
			t.Fatalf("normalizeArchiveEntryPath=%q, want %q", got, want)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "/", ".", "./"} {
			if _, err := normalizeArchiveEntryPath(raw); !errors.Is(err, ErrInvalidEntryPath) {
				t.Fatalf("normalizeArchiveEntryPath(%q): expected ErrInvalidEntryPath, got %v", raw, err)
			}
		}
	})
}
