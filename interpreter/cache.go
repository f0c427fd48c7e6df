// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solenoid-evm/solenoid/tosca"
)

// defaultAnalysisCacheSize bounds how many distinct code hashes' jumpdest
// analyses are retained at once.
const defaultAnalysisCacheSize = 4096

// AnalysisCache memoizes CodeAnalysis results by code hash. Keying by
// hash rather than address means a contract created mid-transaction at
// an address that previously held different code is never confused with
// its predecessor: the cache key itself changes whenever the code does,
// so no explicit invalidation hook is needed.
type AnalysisCache struct {
	cache *lru.Cache[tosca.Hash, *CodeAnalysis]
}

func NewAnalysisCache() *AnalysisCache {
	c, _ := lru.New[tosca.Hash, *CodeAnalysis](defaultAnalysisCacheSize)
	return &AnalysisCache{cache: c}
}

// Get returns the cached analysis for the code with the given hash,
// computing and storing it if this is the first time that hash has
// been seen.
func (c *AnalysisCache) Get(hash tosca.Hash, code []byte) *CodeAnalysis {
	if a, ok := c.cache.Get(hash); ok {
		return a
	}
	a := Analyze(code)
	c.cache.Add(hash, a)
	return a
}
