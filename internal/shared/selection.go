package shared

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSelection parses a 1-indexed selection expression such as "1,3-5,9" against a list of n items.
//
// It returns sorted, de-duplicated 0-indexed positions. An empty expression or "all" selects everything.
func ParseSelection(expr string, n int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "all") {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > n || lo > hi {
			return nil, fmt.Errorf("%w: selection %q out of range 1-%d", ErrInvalidArgument, part, n)
		}
		for i := lo; i <= hi; i++ {
			seen[i-1] = true
		}
	}

	indexes := make([]int, 0, len(seen))
	for i := range seen {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	return indexes, nil
}

// InvertSelection returns the 0-indexed positions in [0, n) that are not in selected.
func InvertSelection(selected []int, n int) []int {
	skip := make(map[int]bool, len(selected))
	for _, i := range selected {
		if i >= 0 && i < n {
			skip[i] = true
		}
	}

	inverted := make([]int, 0, max(0, n-len(skip)))
	for i := 0; i < n; i++ {
		if !skip[i] {
			inverted = append(inverted, i)
		}
	}
	return inverted
}

func parseRange(part string) (int, int, error) {
	bounds := strings.SplitN(part, "-", 2)

	lo, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid selection %q", ErrInvalidArgument, part)
	}
	if len(bounds) == 1 {
		return lo, lo, nil
	}

	hi, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid selection %q", ErrInvalidArgument, part)
	}
	return lo, hi, nil
}
