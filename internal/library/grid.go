package library

// Layout sizes a grid for count real entries. A short list is padded to
// rows*cols cells; a long one grows the row count and is never truncated.
func Layout(count, rows, cols int) (gridRows, gridCols, cells int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if count <= rows*cols {
		return rows, cols, rows * cols
	}
	return (count + cols - 1) / cols, cols, count
}
