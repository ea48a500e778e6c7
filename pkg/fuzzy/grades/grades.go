// Package grades holds the default linguistic labels for granulated domains.
package grades

import (
	"fmt"

	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
)

// Names lists every grade from the lowest to the highest.
var Names = [...]string{
	"extremely low", "very low", "low", "barely low",
	"moderate", "barely high", "high", "very high",
	"extremely high",
}

// Min and Max bound the granularities with default labels.
const (
	Min = 2
	Max = 9
)

// table maps a granularity onto indices into Names.
var table = map[int][]int{
	2: {2, 6},
	3: {2, 4, 6},
	4: {1, 2, 6, 7},
	5: {1, 2, 4, 6, 7},
	6: {1, 2, 3, 5, 6, 7},
	7: {1, 2, 3, 4, 5, 6, 7},
	8: {0, 1, 2, 3, 5, 6, 7, 8},
	9: {0, 1, 2, 3, 4, 5, 6, 7, 8},
}

// Default returns the ordered labels for n granules.
func Default(n int) ([]string, error) {
	idx, ok := table[n]
	if !ok {
		return nil, fmt.Errorf("%w: no default labels for %d granules (want %d-%d)", internalerr.ErrInvalidGranularity, n, Min, Max)
	}
	labels := make([]string, len(idx))
	for i, j := range idx {
		labels[i] = Names[j]
	}
	return labels, nil
}
