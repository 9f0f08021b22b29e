// Package news defines the club news data model: categories, items and the
// normalized feed document. Values are built once by the normalizer and never
// mutated afterwards; a reload produces a fresh Document.
package news

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/abelbrown/clubnews/internal/datekey"
)

// Category is one of the fixed news categories, or the All pseudo-category
// used only when building views.
type Category string

// All is the view-only pseudo-category matching every item.
const All Category = "Todas"

const (
	Messages     Category = "Mensagens"
	Competitions Category = "Competições"
	Injuries     Category = "Lesões e Suspensões"
	Contracts    Category = "Contratos e Imprensa"
	Transfers    Category = "Transferências"
	Jobs         Category = "Empregos"
	Records      Category = "Registos"
)

// DefaultCategory is assigned to items whose category is missing or unknown.
const DefaultCategory = Messages

// TopCategories are the tabs shown above the list, after All.
var TopCategories = []Category{Messages, Competitions, Injuries}

// BottomCategories are the tabs shown below the reader.
var BottomCategories = []Category{Contracts, Transfers, Jobs, Records}

// aliases maps alternate spellings accepted in input to canonical names.
var aliases = map[string]Category{
	"Registros": Records,
	"Registro":  Records,
	"Registo":   Records,
}

// Categories returns the real item categories, in tab order.
func Categories() []Category {
	out := make([]Category, 0, len(TopCategories)+len(BottomCategories))
	out = append(out, TopCategories...)
	out = append(out, BottomCategories...)
	return out
}

// Tabs returns every selectable view category: All followed by Categories().
func Tabs() []Category {
	return append([]Category{All}, Categories()...)
}

// IsCategory reports whether c is a real item category (All is not).
func IsCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// IsTab reports whether c can be selected as a view category.
func IsTab(c Category) bool {
	return c == All || IsCategory(c)
}

// Canonical resolves aliases and reports whether the result is a known
// category. Input is expected to be trimmed.
func Canonical(s string) (Category, bool) {
	if c, ok := aliases[s]; ok {
		return c, true
	}
	c := Category(s)
	return c, IsCategory(c)
}

// Item is a single normalized news entry.
type Item struct {
	Date        string
	Title       string
	Description string
	Category    Category
	SortKey     *datekey.Key // nil when Date is unparseable
}

// HasKey reports whether the item's date resolved to a sort key.
func (it Item) HasKey() bool {
	return it.SortKey != nil
}

// Fingerprint identifies an item across reloads by its date and title.
func (it Item) Fingerprint() string {
	h := sha256.Sum256([]byte(it.Date + "\x00" + it.Title))
	return hex.EncodeToString(h[:8])
}

// Document is the normalized feed payload.
type Document struct {
	CoachName   string
	SidebarDate string
	Items       []Item
}

// Len returns the number of items in the document.
func (d Document) Len() int {
	return len(d.Items)
}
