package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// SortLectureNos orders lecture number tokens numeric-aware: purely numeric
// tokens compare by their integer prefix (then decimal part) and sort before
// everything else; remaining tokens compare lexically.
// ["10","2","3A","1"] → ["1","2","10","3A"].
func SortLectureNos(nos []string) {
	sort.SliceStable(nos, func(i, j int) bool {
		return lessLectureNo(nos[i], nos[j])
	})
}

func lessLectureNo(a, b string) bool {
	ai, arest, anum := numericParts(a)
	bi, brest, bnum := numericParts(b)
	switch {
	case anum && !bnum:
		return true
	case !anum && bnum:
		return false
	case !anum && !bnum:
		return a < b
	}
	if ai != bi {
		return ai < bi
	}
	return arest < brest
}

// numericParts splits a purely numeric token ("2", "2.1") into its integer
// prefix and remainder. Tokens with any non-numeric tail ("3A") are not
// numeric for ordering purposes.
func numericParts(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	rest := s[i:]
	if rest != "" {
		if rest[0] != '.' || strings.TrimRight(rest[1:], "0123456789") != "" || len(rest) == 1 {
			return 0, s, false
		}
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, rest, true
}

// NextLectureNo suggests the integer after the maximum existing integer
// prefix, or "1" when the chapter has no lectures yet.
func NextLectureNo(existing []string) string {
	max := 0
	for _, no := range existing {
		i := 0
		for i < len(no) && no[i] >= '0' && no[i] <= '9' {
			i++
		}
		if i == 0 {
			continue
		}
		if n, err := strconv.Atoi(no[:i]); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}
