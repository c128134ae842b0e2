package parquet

// ColumnDescriptor describes a single leaf column of a nested schema:
// its physical type and the maximum definition and repetition levels
// derived from the column's path. It is immutable for the lifetime of
// any writer or reader constructed from it.
type ColumnDescriptor struct {
	PhysicalType PhysicalType
	// TypeLength is the value size in bytes for FixedLenByteArray
	// columns and zero otherwise.
	TypeLength         int
	Path               string
	MaxDefinitionLevel int16
	MaxRepetitionLevel int16
}

// NewColumnDescriptor returns a descriptor for a column at path with the
// given physical type and level bounds.
func NewColumnDescriptor(t PhysicalType, path string, maxDef, maxRep int16) *ColumnDescriptor {
	return &ColumnDescriptor{
		PhysicalType:       t,
		Path:               path,
		MaxDefinitionLevel: maxDef,
		MaxRepetitionLevel: maxRep,
	}
}
