package linediff

// Classify walks oldLines and newLines against pairs and emits one Operation
// per step.
//
// Unaligned lines sitting on both sides before the same alignment point, or
// after the last one, are paired positionally into Changed operations,
// whether or not the two lines are related. Whatever one side has left over
// becomes Deleted or Added.
func Classify(oldLines, newLines []string, pairs []Pair) []Operation {
	m, n := len(oldLines), len(newLines)
	ops := make([]Operation, 0, max(m, n))

	oldIndex, newIndex := 0, 0
	oldLineNo, newLineNo := 1, 1
	commonIndex := 0

	for oldIndex < m || newIndex < n {
		// Past the last pair the end of both sequences acts as the next anchor.
		next := Pair{Old: m, New: n}
		if commonIndex < len(pairs) {
			next = pairs[commonIndex]
		}
		switch {
		case oldIndex == next.Old && newIndex == next.New:
			ops = append(ops, Operation{
				Kind:      Unchanged,
				Content:   oldLines[oldIndex],
				OldLineNo: oldLineNo,
				NewLineNo: newLineNo,
			})
			oldIndex++
			newIndex++
			oldLineNo++
			newLineNo++
			commonIndex++
		case oldIndex < next.Old && newIndex < next.New:
			ops = append(ops, Operation{
				Kind:           Changed,
				DeletedContent: oldLines[oldIndex],
				AddedContent:   newLines[newIndex],
				OldLineNo:      oldLineNo,
				NewLineNo:      newLineNo,
			})
			oldIndex++
			newIndex++
			oldLineNo++
			newLineNo++
		case oldIndex < next.Old:
			ops = append(ops, Operation{Kind: Deleted, Content: oldLines[oldIndex], OldLineNo: oldLineNo})
			oldIndex++
			oldLineNo++
		case newIndex < next.New:
			ops = append(ops, Operation{Kind: Added, Content: newLines[newIndex], NewLineNo: newLineNo})
			newIndex++
			newLineNo++
		default:
			// Pair lies behind a cursor; only reachable with pairs that did
			// not come from Align for these lines.
			commonIndex++
		}
	}
	return ops
}
