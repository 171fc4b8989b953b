package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one line of a purchase or sale document as seen by the
// reconciliation engine. A nil ID marks a line that does not exist yet.
type LineItem struct {
	ID        *uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
	ToDelete  bool
}

// IsNew returns true if the line has no persisted identity
func (l LineItem) IsNew() bool {
	return l.ID == nil
}

// LineChange describes a quantity change on a line present in both the
// existing and proposed sets. The product ID is taken from the proposed line:
// a matched line's product is assumed stable between the two sets.
type LineChange struct {
	LineID      uuid.UUID
	ProductID   uuid.UUID
	OldQuantity int64
	NewQuantity int64
}

// Delta returns the signed quantity change (new - old)
func (c LineChange) Delta() int64 {
	return c.NewQuantity - c.OldQuantity
}

// LineDiff classifies the changes between the persisted line items of a
// document and a proposed new set of line items.
type LineDiff struct {
	Removed   []LineItem   // existing lines absent from the proposal or flagged for deletion
	Changed   []LineChange // lines present in both sets with a different quantity
	Added     []LineItem   // proposed lines with no identity
	Unchanged []LineItem   // lines present in both sets with an equal quantity
}

// IsEmpty returns true if the diff produces no stock effect
func (d LineDiff) IsEmpty() bool {
	return len(d.Removed) == 0 && len(d.Changed) == 0 && len(d.Added) == 0
}

// DiffLineItems compares the persisted line items of a document against a
// proposed replacement set and classifies every line as removed, changed,
// added or unchanged. Matching is by line identity only.
//
// The function is pure: no side effects, deterministic for any pair of inputs.
// Every existing line lands in exactly one of Removed, Changed or Unchanged;
// every proposed line with an identity known to existing lands in exactly one
// of Changed or Unchanged; every proposed line without an identity lands in
// Added. A proposed line flagged ToDelete forces its existing counterpart into
// Removed.
func DiffLineItems(existing, proposed []LineItem) LineDiff {
	diff := LineDiff{
		Removed:   make([]LineItem, 0),
		Changed:   make([]LineChange, 0),
		Added:     make([]LineItem, 0),
		Unchanged: make([]LineItem, 0),
	}

	proposedByID := make(map[uuid.UUID]LineItem, len(proposed))
	for _, line := range proposed {
		if line.IsNew() {
			if line.ToDelete {
				// Deleting a line that was never persisted is a no-op.
				continue
			}
			diff.Added = append(diff.Added, line)
			continue
		}
		proposedByID[*line.ID] = line
	}

	for _, line := range existing {
		if line.ID == nil {
			// Persisted lines always carry an identity; tolerate and drop.
			continue
		}

		match, ok := proposedByID[*line.ID]
		if !ok || match.ToDelete {
			diff.Removed = append(diff.Removed, line)
			continue
		}

		if match.Quantity != line.Quantity {
			diff.Changed = append(diff.Changed, LineChange{
				LineID:      *line.ID,
				ProductID:   match.ProductID,
				OldQuantity: line.Quantity,
				NewQuantity: match.Quantity,
			})
		} else {
			diff.Unchanged = append(diff.Unchanged, line)
		}
	}

	return diff
}
