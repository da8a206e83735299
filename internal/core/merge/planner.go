// Package merge contains the pure business logic for synchronizing stored
// column metadata with a fresh catalog snapshot.
package merge

import "github.com/example/tablegen/internal/core/column"

// StoredColumn is a column metadata record as currently persisted.
type StoredColumn struct {
	ID           int64
	ColumnName   string
	Sort         int
	HTMLType     string
	QueryType    string
	DictType     string
	IsPk         bool
	IsRequired   bool
	IsInsertable bool
	IsEditable   bool
}

// LiveColumn is a freshly introspected and classified column.
type LiveColumn struct {
	ColumnName     string
	ColumnComment  string
	ColumnType     string
	Position       int
	IsPk           bool
	IsIncrement    bool
	Classification column.Classification
}

// Column is a merged column: the classification plus the carried-over overrides.
type Column struct {
	ID            int64 // zero for inserts
	ColumnName    string
	ColumnComment string
	ColumnType    string
	Sort          int
	IsPk          bool
	IsIncrement   bool
	DictType      string
	column.Classification
}

// SyncPlan describes the writes needed to bring stored metadata in line with the live table.
type SyncPlan struct {
	Updates   []Column
	Inserts   []Column
	DeleteIDs []int64
}

// NothingToDo reports whether the plan has no writes. Matched columns always
// produce an update, so this is true only for an empty live table and store.
func (p SyncPlan) NothingToDo() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0 && len(p.DeleteIDs) == 0
}

// PlanSync merges live columns into stored ones, keyed by column name.
//
// Matched columns take the fresh classification, except:
//   - DictType and QueryType are kept when the column is not listable.
//   - HTMLType and IsRequired are kept when the stored record was
//     (required, not pk and insertable) or editable.
//
// Live-only columns are appended after the highest stored sort.
// Stored-only columns are deleted.
func PlanSync(stored []StoredColumn, live []LiveColumn) SyncPlan {
	byName := make(map[string]StoredColumn, len(stored))
	maxSort := 0
	for _, s := range stored {
		byName[s.ColumnName] = s
		if s.Sort > maxSort {
			maxSort = s.Sort
		}
	}

	var plan SyncPlan
	seen := make(map[string]bool, len(live))
	for _, l := range live {
		seen[l.ColumnName] = true
		merged := Column{
			ColumnName:     l.ColumnName,
			ColumnComment:  l.ColumnComment,
			ColumnType:     l.ColumnType,
			IsPk:           l.IsPk,
			IsIncrement:    l.IsIncrement,
			Classification: l.Classification,
		}

		prev, ok := byName[l.ColumnName]
		if !ok {
			maxSort++
			merged.Sort = maxSort
			plan.Inserts = append(plan.Inserts, merged)
			continue
		}

		merged.ID = prev.ID
		merged.Sort = prev.Sort
		if !merged.IsListable {
			merged.DictType = prev.DictType
			merged.QueryType = prev.QueryType
		}
		if KeepsWidget(prev) {
			merged.HTMLType = prev.HTMLType
			merged.IsRequired = prev.IsRequired
		}
		plan.Updates = append(plan.Updates, merged)
	}

	for _, s := range stored {
		if !seen[s.ColumnName] {
			plan.DeleteIDs = append(plan.DeleteIDs, s.ID)
		}
	}

	return plan
}

// KeepsWidget reports whether a stored column's widget and requiredness
// survive a sync.
func KeepsWidget(prev StoredColumn) bool {
	return (prev.IsRequired && !prev.IsPk && prev.IsInsertable) || prev.IsEditable
}
