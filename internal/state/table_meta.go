package state

// TableMeta is the table identity snapshot.
type TableMeta struct {
	tableType  int
	maxPlayers int
	tableName  string
	tableFull  bool
}

func (m *TableMeta) TableType() int    { return m.tableType }
func (m *TableMeta) MaxPlayers() int   { return m.maxPlayers }
func (m *TableMeta) TableName() string { return m.tableName }
func (m *TableMeta) TableFull() bool   { return m.tableFull }

// NewTableMeta returns the pre-payload snapshot: default table type with
// its derived seat count.
func NewTableMeta() *TableMeta {
	return &TableMeta{maxPlayers: MaxPlayersForType(0)}
}

// MaxPlayersForType maps table type to seat count. This is a fixed
// table rule, never server-mutable state.
func MaxPlayersForType(tableType int) int {
	switch tableType {
	case 1:
		return 6
	case 2:
		return 8
	default:
		return 4
	}
}

// UpdateTableMeta folds one payload into the previous snapshot.
// maxPlayers is always recomputed from the table type; a transmitted
// MaxPlayers field is ignored even when present.
func UpdateTableMeta(prev *TableMeta, raw Raw) (*TableMeta, bool) {
	next := TableMeta{}
	if prev != nil {
		next = *prev
	}

	if v, ok := tableInt(raw, "Type"); ok {
		next.tableType = v
	}
	next.maxPlayers = MaxPlayersForType(next.tableType)
	if v, ok := tableString(raw, "TableName"); ok {
		next.tableName = v
	}
	// TableFull sits at the root in some payload shapes
	if v, ok := getBool(raw, "TableFull"); ok {
		next.tableFull = v
	} else if v, ok := tableBool(raw, "TableFull"); ok {
		next.tableFull = v
	}

	if prev != nil && next == *prev {
		return prev, false
	}
	return &next, true
}
