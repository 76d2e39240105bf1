package domain

import (
	"container/list"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// priceLevel is an ordered sequence of BookEntry preserving insertion order
// (time priority within a price).
type priceLevel struct {
	price  decimal.Decimal
	orders *list.List // of *BookEntry
}

func newPriceLevel(price decimal.Decimal) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

// askItem orders price levels ascending by price, so btree.Ascend visits
// the best (lowest) ask first.
type askItem struct{ level *priceLevel }

func (a askItem) Less(other btree.Item) bool {
	return a.level.price.LessThan(other.(askItem).level.price)
}

// bidItem reverses the comparator so btree.Ascend visits the best
// (highest) bid first — the bid book is ordered descending by price.
type bidItem struct{ level *priceLevel }

func (b bidItem) Less(other btree.Item) bool {
	return b.level.price.GreaterThan(other.(bidItem).level.price)
}

// locator is the auxiliary clOrderId index entry. Every entry in a book
// must have a corresponding locator and vice versa.
type locator struct {
	side  Side
	level *priceLevel
	elem  *list.Element // element.Value is *BookEntry
}

// Book is one instrument's pair of sides plus the clOrderId index that
// makes cancel/reduce O(1). It is the sole owner of both price trees.
type Book struct {
	bids  *btree.BTree // of bidItem
	asks  *btree.BTree // of askItem
	index map[string]*locator
}

func newBook() *Book {
	return &Book{
		bids:  btree.New(32),
		asks:  btree.New(32),
		index: make(map[string]*locator),
	}
}

func (b *Book) levelFor(side Side, price decimal.Decimal) *priceLevel {
	if side == SideBuy {
		probe := &priceLevel{price: price}
		if item := b.bids.Get(bidItem{probe}); item != nil {
			return item.(bidItem).level
		}
		lvl := newPriceLevel(price)
		b.bids.ReplaceOrInsert(bidItem{lvl})
		return lvl
	}
	probe := &priceLevel{price: price}
	if item := b.asks.Get(askItem{probe}); item != nil {
		return item.(askItem).level
	}
	lvl := newPriceLevel(price)
	b.asks.ReplaceOrInsert(askItem{lvl})
	return lvl
}

func (b *Book) dropLevelIfEmpty(side Side, lvl *priceLevel) {
	if lvl.orders.Len() > 0 {
		return
	}
	if side == SideBuy {
		b.bids.Delete(bidItem{lvl})
	} else {
		b.asks.Delete(askItem{lvl})
	}
}

// insert appends entry to the tail of its (side, price) level and
// registers the index. The caller has already checked for duplicates.
func (b *Book) insert(entry *BookEntry) {
	lvl := b.levelFor(entry.Order.Side, entry.Order.Price)
	elem := lvl.orders.PushBack(entry)
	b.index[entry.Order.ClOrderID] = &locator{side: entry.Order.Side, level: lvl, elem: elem}
}

// remove splices the entry identified by clOrderId out of its level and
// index. It returns the entry and true if found.
func (b *Book) remove(clOrderID string) (*BookEntry, bool) {
	loc, ok := b.index[clOrderID]
	if !ok {
		return nil, false
	}
	entry := loc.elem.Value.(*BookEntry)
	loc.level.orders.Remove(loc.elem)
	b.dropLevelIfEmpty(loc.side, loc.level)
	delete(b.index, clOrderID)
	return entry, true
}

// lookup returns the live entry for clOrderId without removing it.
func (b *Book) lookup(clOrderID string) (*BookEntry, bool) {
	loc, ok := b.index[clOrderID]
	if !ok {
		return nil, false
	}
	return loc.elem.Value.(*BookEntry), true
}

// removeFromLevel drops a single list element from its level once the
// entry backing it has been fully consumed, keeping the level and index
// consistent in one step. It may drop the level from its price tree, so it
// must not be called while that tree is being ascended.
func (b *Book) removeFromLevel(side Side, lvl *priceLevel, elem *list.Element) {
	entry := elem.Value.(*BookEntry)
	lvl.orders.Remove(elem)
	delete(b.index, entry.Order.ClOrderID)
	b.dropLevelIfEmpty(side, lvl)
}

// ascendAsks visits ask levels from best (lowest price) to worst, stopping
// when visit returns false.
func (b *Book) ascendAsks(visit func(*priceLevel) bool) {
	b.asks.Ascend(func(item btree.Item) bool {
		return visit(item.(askItem).level)
	})
}

// ascendBids visits bid levels from best (highest price) to worst.
func (b *Book) ascendBids(visit func(*priceLevel) bool) {
	b.bids.Ascend(func(item btree.Item) bool {
		return visit(item.(bidItem).level)
	})
}

// BestBid/BestAsk support test assertions and the non-crossing invariant.
func (b *Book) BestBid() (decimal.Decimal, bool) {
	item := b.bids.Min()
	if item == nil {
		return decimal.Zero, false
	}
	return item.(bidItem).level.price, true
}

func (b *Book) BestAsk() (decimal.Decimal, bool) {
	item := b.asks.Min()
	if item == nil {
		return decimal.Zero, false
	}
	return item.(askItem).level.price, true
}
