// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package lru is a bounded in-memory Recorder implementation. This
// implementation is intended for single-process usage; keys eventually
// fall out of the cache.
package lru

import (
	hashlru "github.com/hashicorp/golang-lru"
)

const maxKeys = 10000

var defaultValue = struct{}{}

func New() *Cache {
	// error only happens with a non-positive size
	c, _ := hashlru.New(maxKeys)
	return &Cache{underlying: c}
}

type Cache struct {
	underlying *hashlru.Cache
}

func (c *Cache) SeenBefore(key string) bool {
	if c.underlying.Contains(key) {
		return true
	}
	c.underlying.Add(key, defaultValue)
	return false
}
