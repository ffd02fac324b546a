package domain

import "strings"

// ConfirmGate is the typed-phrase interlock in front of a destructive
// bulk action. It is a UX safety measure, not a security control: the
// action is refused unless the operator supplies the exact phrase.
type ConfirmGate struct {
	Phrase        string
	CaseSensitive bool
}

func (g ConfirmGate) Match(input string) bool {
	if g.CaseSensitive {
		return input == g.Phrase
	}
	return strings.EqualFold(input, g.Phrase)
}

// The two gates keep the differing conventions of the original
// confirmation dialogs: stock clearing demands the exact casing,
// listings clearing does not.
var (
	StockClearGate    = ConfirmGate{Phrase: "ELIMINAR STOCK", CaseSensitive: true}
	ListingsClearGate = ConfirmGate{Phrase: "eliminar publicaciones", CaseSensitive: false}
)
