package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// RowSink receives one generation at a time as 0/1 cell values.
type RowSink interface {
	WriteRow(cells []uint8) error
}
