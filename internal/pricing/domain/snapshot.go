// Package domain defines the local pricing reference-data entities.
package domain

import (
	"time"
)

// ListScope determines who a price list applies to.
type ListScope string

const (
	// ListScopeGlobal lists apply to every customer.
	ListScopeGlobal ListScope = "global"
	// ListScopeCustomer lists apply only to explicitly allocated customers.
	ListScopeCustomer ListScope = "customer"
)

// PriceList is a named collection of SKU prices with a validity window.
type PriceList struct {
	ID        string
	Name      string
	Priority  int
	Scope     ListScope
	ValidFrom *time.Time
	ValidTo   *time.Time
	Active    bool
}

// PriceItem is a single SKU price entry belonging to exactly one list.
type PriceItem struct {
	ID       string
	ListID   string
	SKU      string
	Price    float64
	Currency string
}

// Snapshot is the complete local pricing state. It is replaced wholesale on a
// full sync and patched by the merge routine on a delta sync; nothing else
// mutates it.
type Snapshot struct {
	Lists []PriceList
	Items []PriceItem
	// Allocations maps customer id to the price-list ids granting access.
	Allocations map[string][]string
	// Cursor is the opaque sync timestamp marking the snapshot's currency.
	// Empty until the first successful sync.
	Cursor string
}

// Counts summarizes snapshot size for the status endpoint.
type Counts struct {
	Lists       int
	Items       int
	Allocations int
}
