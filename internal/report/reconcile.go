package report

// reconcile.go tracks per-row create/update/delete intent across an edit
// session. The UI keeps every row visible until save, including rows marked
// for deletion, so a delete can be undone; only the reconciled intent is
// ever sent to the backend.

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RowState is the reconciled intent for one editable row.
type RowState int

const (
	// RowUnchanged rows produce no backend call.
	RowUnchanged RowState = iota

	// RowCreated rows are emitted as creates (no server id yet).
	RowCreated

	// RowUpdated rows are emitted as updates keyed by server id.
	RowUpdated

	// RowDeleted rows are emitted as deletes keyed by server id.
	RowDeleted
)

func (s RowState) String() string {
	switch s {
	case RowUnchanged:
		return "unchanged"
	case RowCreated:
		return "created"
	case RowUpdated:
		return "updated"
	case RowDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// EditableRow wraps one detail row during an edit session. It is never
// persisted directly.
type EditableRow struct {
	ID         string    `json:"id,omitempty"`
	IsNew      bool      `json:"isNew"`
	IsModified bool      `json:"isModified"`
	IsDeleted  bool      `json:"isDeleted"`
	Row        DetailRow `json:"row"`
}

// Discarded reports whether the row is dropped client-side with no server
// call: a row added and then removed within the same session.
func (r EditableRow) Discarded() bool {
	return r.IsNew && r.IsDeleted
}

// State derives the row's reconciled intent. Combinations the UI cannot
// legally produce are rejected rather than guessed at.
func (r EditableRow) State() (RowState, error) {
	if r.IsNew && r.ID != "" {
		return RowUnchanged, fmt.Errorf("row %s: new row with server id already assigned", r.ID)
	}
	switch {
	case r.Discarded():
		return RowUnchanged, nil
	case r.IsNew:
		return RowCreated, nil
	case r.IsDeleted:
		if r.ID == "" {
			return RowUnchanged, fmt.Errorf("deleted row has no server id")
		}
		return RowDeleted, nil
	case r.IsModified:
		if r.ID == "" {
			return RowUnchanged, fmt.Errorf("modified row has no server id")
		}
		return RowUpdated, nil
	default:
		return RowUnchanged, nil
	}
}

// Apply replaces the row's fields with updated, marking the row modified the
// first time anything differs from its last known server value. The flag is
// sticky: reverting a field later does not clear it.
func (r *EditableRow) Apply(updated DetailRow) {
	updated.ID = r.Row.ID
	if !r.IsModified && updated != r.Row {
		r.IsModified = true
	}
	r.Row = updated
}

// WrapRows starts an edit session from rows previously fetched from the
// backend.
func WrapRows(existing []DetailRow) []EditableRow {
	rows := make([]EditableRow, len(existing))
	for i, d := range existing {
		rows[i] = EditableRow{ID: d.ID, Row: d}
	}
	return rows
}

// Reconciliation is the per-table outcome of an edit session.
type Reconciliation struct {
	ToCreate []DetailRow
	ToUpdate []DetailRow
	ToDelete []string
}

// Empty reports whether the reconciliation produces no backend calls.
func (r Reconciliation) Empty() bool {
	return len(r.ToCreate) == 0 && len(r.ToUpdate) == 0 && len(r.ToDelete) == 0
}

// Reconcile derives create/update/delete intent from the edited rows.
//
// existing is the table's last known server state, indexed by id; a row
// whose modified flag was lost in transit is still emitted as an update when
// its fields differ from the server copy. Discarded rows (added and removed
// in the same session) produce nothing.
func Reconcile(existing []DetailRow, edited []EditableRow) (Reconciliation, error) {
	server := make(map[string]DetailRow, len(existing))
	for _, d := range existing {
		server[d.ID] = d
	}

	var recon Reconciliation
	for _, row := range edited {
		state, err := row.State()
		if err != nil {
			return Reconciliation{}, err
		}

		switch state {
		case RowCreated:
			d := row.Row
			d.ID = ""
			recon.ToCreate = append(recon.ToCreate, d)
		case RowUpdated:
			d := row.Row
			d.ID = row.ID
			recon.ToUpdate = append(recon.ToUpdate, d)
		case RowDeleted:
			recon.ToDelete = append(recon.ToDelete, row.ID)
		case RowUnchanged:
			if row.Discarded() || row.ID == "" {
				continue
			}
			if prev, ok := server[row.ID]; ok && prev != row.Row {
				d := row.Row
				d.ID = row.ID
				recon.ToUpdate = append(recon.ToUpdate, d)
			}
		}
	}
	return recon, nil
}

// ApplyToAll copies every field of the source row except its id and its own
// table number onto every other row in the table. Rows that already carry a
// server id are marked modified.
func ApplyToAll(rows []EditableRow, sourceIdx int) error {
	if sourceIdx < 0 || sourceIdx >= len(rows) {
		return fmt.Errorf("source row index %d out of range", sourceIdx)
	}

	src := rows[sourceIdx].Row
	for i := range rows {
		if i == sourceIdx {
			continue
		}
		updated := src
		updated.ID = rows[i].Row.ID
		updated.ChamberNumber = rows[i].Row.ChamberNumber
		updated.FanNumber = rows[i].Row.FanNumber
		updated.SerialNumber = rows[i].Row.SerialNumber
		if rows[i].IsNew {
			rows[i].Row = updated
			continue
		}
		rows[i].Apply(updated)
	}
	return nil
}

// NextNumber returns the lowest positive integer not currently used as a
// table number among non-removed rows, as a string. number extracts the
// row's table number (chamber or fan). Rows marked deleted release their
// number; a deleted-then-restored row keeps its original one.
func NextNumber(rows []EditableRow, number func(DetailRow) string) string {
	used := make(map[int]bool)
	for _, r := range rows {
		if r.IsDeleted {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(number(r.Row)))
		if err != nil || n <= 0 {
			continue
		}
		used[n] = true
	}

	for n := 1; ; n++ {
		if !used[n] {
			return strconv.Itoa(n)
		}
	}
}

// SortByNumber orders rows by their table number, non-numeric last, keeping
// a stable order for display after adds and restores.
func SortByNumber(rows []EditableRow, number func(DetailRow) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, errA := strconv.Atoi(strings.TrimSpace(number(rows[i].Row)))
		b, errB := strconv.Atoi(strings.TrimSpace(number(rows[j].Row)))
		switch {
		case errA != nil:
			return false
		case errB != nil:
			return true
		default:
			return a < b
		}
	})
}
