package titles

// EditDistance computes the Levenshtein distance between two strings with
// unit cost for insertions, deletions, and substitutions.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns a normalized similarity in [0, 1]. Two empty strings are
// defined as identical.
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(EditDistance(a, b))/float64(longest)
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
