package scoring

// SequenceResult is the outcome of comparing the drawn stroke order to the
// required one.
type SequenceResult struct {
	Score          float64
	LCSLength      int
	RequiredLength int
	UserLength     int
	Backtracks     int
}

// Compliance returns the score as a percentage.
func (r SequenceResult) Compliance() float64 {
	return r.Score * 100
}

// Sequence scores stroke-order compliance as LCS(required, user) / |required|.
// An empty required order scores 1.0; an empty user order scores 0.
func Sequence(required, user []int) SequenceResult {
	res := SequenceResult{
		RequiredLength: len(required),
		UserLength:     len(user),
	}
	if len(required) == 0 {
		res.Score = 1.0
		return res
	}
	if len(user) == 0 {
		return res
	}

	res.LCSLength = LCS(required, user)
	res.Score = clamp(float64(res.LCSLength)/float64(len(required)), 0, 1)
	res.Backtracks = Backtracks(required, user)
	return res
}

// LCS returns the length of the longest common subsequence of a and b.
func LCS(a, b []int) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Two rolling rows of the (len(a)+1) × (len(b)+1) table.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Backtracks counts how often the player drew a stroke that belongs earlier
// in the required order than one they had already drawn. Ids missing from
// required are ignored.
func Backtracks(required, user []int) int {
	pos := make(map[int]int, len(required))
	for i, id := range required {
		pos[id] = i
	}

	count := 0
	maxSeen := -1
	for _, id := range user {
		p, ok := pos[id]
		if !ok {
			continue
		}
		if p < maxSeen {
			count++
		}
		if p > maxSeen {
			maxSeen = p
		}
	}
	return count
}
