// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package protoerr

import (
	"errors"
	"testing"
)

func TestGenerateServerIDErrorUnwraps(t *testing.T) {
	e := &GenerateServerIDError{Field: "id", Err: ErrIDSpaceExhausted}
	if !errors.Is(e, ErrIDSpaceExhausted) {
		t.Fatal("expected errors.Is to see through GenerateServerIDError to ErrIDSpaceExhausted")
	}
}

func TestSetClientIDErrorUnwraps(t *testing.T) {
	e := &SetClientIDError{ID: 5, Field: "id", Err: ErrIDSpaceExhausted}
	if !errors.Is(e, ErrIDSpaceExhausted) {
		t.Fatal("expected errors.Is to see through SetClientIDError to ErrIDSpaceExhausted")
	}
}

func TestErrorMessagesNameTheirFields(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ArgNoServerIDError{Field: "buffer"}, `protoerr: argument "buffer" has no server-side id`},
		{&ArgNoClientIDError{Field: "surface", ClientID: 3}, `protoerr: argument "surface" has no id on client 3`},
		{&NoClientObjectError{ClientID: 2, ID: 9}, "protoerr: client 2 has no object 9"},
		{&NoServerObjectError{ID: 9}, "protoerr: server registry has no object 9"},
		{&WrongObjectTypeError{Field: "region", Actual: "wl_surface", Expected: "wl_region"},
			`protoerr: argument "region": object is wl_surface, want wl_region`},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("Error() = %q, want %q", got, c.want)
		}
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{ErrReceiverNoServerID, ErrReceiverNoClient, ErrHandlerBorrowed, ErrIDSpaceExhausted}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d unexpectedly matches sentinel %d", i, j)
			}
		}
	}
}
