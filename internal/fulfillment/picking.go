package fulfillment

import (
	"fmt"
	"sort"
	"strings"
)

func buildPickingList(bySKU map[string]int, unresolved []string) PickingList {
	rows := make([]PickingRow, 0, len(bySKU))
	for sku, qty := range bySKU {
		rows = append(rows, PickingRow{SKU: sku, Qty: qty})
	}
	// the printable artifact demands deterministic SKU-ascending order
	sort.Slice(rows, func(i, j int) bool { return rows[i].SKU < rows[j].SKU })
	return PickingList{Rows: rows, Unresolved: dedupe(unresolved)}
}

// Text renders the printable artifact: one row per SKU, ascending.
func (l PickingList) Text() string {
	var b strings.Builder
	for _, r := range l.Rows {
		fmt.Fprintf(&b, "%s\t%d\n", r.SKU, r.Qty)
	}
	return b.String()
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
