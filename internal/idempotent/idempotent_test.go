// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package idempotent

import (
	"net/http/httptest"
	"testing"

	"github.com/moov-io/atm/internal/idempotent/lru"
)

func TestIdempotent__FromRequest(t *testing.T) {
	rec := lru.New()

	r := httptest.NewRequest("POST", "/accounts/1234/withdrawals", nil)
	key, seen := FromRequest(r, rec)
	if key != "" || seen {
		t.Errorf("key=%q seen=%v", key, seen)
	}

	r.Header.Set("X-Idempotency-Key", "unique")
	key, seen = FromRequest(r, rec)
	if key != "unique" || seen {
		t.Errorf("key=%q seen=%v", key, seen)
	}

	// replayed request
	key, seen = FromRequest(r, rec)
	if key != "unique" || !seen {
		t.Errorf("key=%q seen=%v", key, seen)
	}
}

func TestIdempotent__SeenBefore(t *testing.T) {
	w := httptest.NewRecorder()
	SeenBefore(w)
	w.Flush()

	if w.Code != 412 {
		t.Errorf("got %d", w.Code)
	}
}
