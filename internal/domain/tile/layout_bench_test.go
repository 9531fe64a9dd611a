package tile

import "testing"

// Cell storage layout: the renderer walks Data row by row, queries walk a
// rectangle. These compare the row-major [][]Cell against a column-major
// walk and a flat index array holding only what the region walk reads.

const benchCols, benchRows = 512, 256

func benchGrid() *Grid {
	g := NewGrid(benchCols, benchRows, 16, 16)
	for y := 0; y < benchRows; y++ {
		for x := 0; x < benchCols; x++ {
			if (x+y)%3 != 0 {
				g.SetIndex(x, y, (x*7+y)%32)
			}
		}
	}
	g.SetCollisionBetween(0, 7)
	return g
}

// Case 1: region walk, row-major order (renderer order)

func BenchmarkWalk_RowMajor(b *testing.B) {
	g := benchGrid()
	b.ResetTimer()
	var sum int
	for n := 0; n < b.N; n++ {
		sum = 0
		for y := 0; y < g.Rows; y++ {
			row := g.Data[y]
			for x := range row {
				if !row[x].IsEmpty() {
					sum += row[x].Index
				}
			}
		}
	}
	_ = sum
}

// Case 2: same walk, column-major order

func BenchmarkWalk_ColumnMajor(b *testing.B) {
	g := benchGrid()
	b.ResetTimer()
	var sum int
	for n := 0; n < b.N; n++ {
		sum = 0
		for x := 0; x < g.Columns; x++ {
			for y := 0; y < g.Rows; y++ {
				if c := &g.Data[y][x]; !c.IsEmpty() {
					sum += c.Index
				}
			}
		}
	}
	_ = sum
}

// Case 3: flat index column only

func BenchmarkWalk_FlatIndex(b *testing.B) {
	g := benchGrid()
	flat := make([]int, 0, benchCols*benchRows)
	for y := range g.Data {
		for x := range g.Data[y] {
			flat = append(flat, g.Data[y][x].Index)
		}
	}
	b.ResetTimer()
	var sum int
	for n := 0; n < b.N; n++ {
		sum = 0
		for _, idx := range flat {
			if idx >= 0 {
				sum += idx
			}
		}
	}
	_ = sum
}

// Case 4: filtered walk, colliding cells only

func BenchmarkFilter_Colliding(b *testing.B) {
	g := benchGrid()
	b.ResetTimer()
	var count int
	for n := 0; n < b.N; n++ {
		count = 0
		for y := range g.Data {
			for x := range g.Data[y] {
				if g.Data[y][x].Collides() {
					count++
				}
			}
		}
	}
	_ = count
}
