package combinator

// Product returns the Cartesian product of lists, computed as a left fold
// from a single empty row. An empty list anywhere yields no rows; no lists
// yields one empty row.
func Product(lists [][]any) [][]any {
	acc := [][]any{{}}
	for _, list := range lists {
		next := make([][]any, 0, len(acc)*len(list))
		for _, partial := range acc {
			for _, v := range list {
				row := make([]any, len(partial), len(partial)+1)
				copy(row, partial)
				next = append(next, append(row, v))
			}
		}
		acc = next
	}
	return acc
}

// ExcludeRows drops every row equal to one of exclusions.
func ExcludeRows(rows [][]any, exclusions [][]any) [][]any {
	if len(exclusions) == 0 {
		return rows
	}
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		if !containsRow(exclusions, row) {
			out = append(out, row)
		}
	}
	return out
}

func containsRow(rows [][]any, row []any) bool {
	for _, r := range rows {
		if RowsEqual(r, row) {
			return true
		}
	}
	return false
}

// RowsEqual compares two rows position by position.
func RowsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
