// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package testutil wraps the comparison helpers shared by the test suites.
package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Diff(a, b interface{}, opts ...cmp.Option) string {
	return cmp.Diff(a, b, opts...)
}

// ExpectNoDiff fails the test when want and got differ.
func ExpectNoDiff(tb testing.TB, want, got interface{}, opts ...cmp.Option) {
	tb.Helper()
	if diff := Diff(want, got, opts...); diff != "" {
		tb.Errorf("Unexpected diff, -want +got:\n%s", diff)
	}
}
