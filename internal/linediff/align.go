package linediff

// Align returns a longest common subsequence of oldLines and newLines as
// index pairs in increasing order.
//
// dp[i][j] holds the LCS length of oldLines[:i] and newLines[:j]. When
// backtracking hits a tie between dropping an old line and dropping a new
// line, the new line is dropped first. Callers rely on that choice to decide
// which lines are reported as added versus deleted, so it must not change.
//
// Time and memory are O(len(oldLines) * len(newLines)).
func Align(oldLines, newLines []string) []Pair {
	m, n := len(oldLines), len(newLines)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if oldLines[i-1] == newLines[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	// Backtrack from (m, n), filling pairs from the end.
	pairs := make([]Pair, dp[m][n])
	k := len(pairs)
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case oldLines[i-1] == newLines[j-1]:
			k--
			pairs[k] = Pair{Old: i - 1, New: j - 1}
			i--
			j--
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return pairs
}
