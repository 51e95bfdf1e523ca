// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package idempotent

import (
	"net/http"
)

// Recorder offers a method to determine if a given key has been
// seen before or not. Each invocation of SeenBefore needs to
// record each key found, but there's no minimum duration required.
type Recorder interface {
	SeenBefore(key string) bool
}

// FromRequest extracts X-Idempotency-Key from the request and records it.
// seen reports whether the key was already used.
func FromRequest(r *http.Request, rec Recorder) (key string, seen bool) {
	key = r.Header.Get("X-Idempotency-Key")
	if key == "" || rec == nil {
		return key, false
	}
	return key, rec.SeenBefore(key)
}

// SeenBefore completes a request whose idempotency key was already used.
// Clients resend requests with the same key; we just reply "already done".
func SeenBefore(w http.ResponseWriter) {
	w.WriteHeader(http.StatusPreconditionFailed)
}
