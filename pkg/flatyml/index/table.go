// Package index provides the chained hash table that backs a parsed reader.
package index

import "strings"

// Buckets is the fixed number of bucket chains in a Table.
const Buckets = 256

// entry is a single cell of a bucket chain.
type entry struct {
	key   string
	value Value
	size  int
	next  *entry
}

// Entry is a read-only view of a stored key/value pair.
type Entry struct {
	Key   string
	Value Value
	Size  int
}

// Table maps keys to typed values using 256 singly-linked bucket chains.
//
// A Table is not safe for concurrent mutation. Once fully built it may be
// read from any number of goroutines.
type Table struct {
	buckets [Buckets]*entry
	order   []*entry // first-insertion order, for Keys and Walk
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// Hash is the polynomial roll h = 37*h + b over the key bytes.
func Hash(key string) uint {
	var h uint
	for i := 0; i < len(key); i++ {
		h = 37*h + uint(key[i])
	}
	return h
}

func bucketOf(key string) int {
	return int(Hash(key) % Buckets)
}

// Insert stores value under key.
//
// If key is already present its value and size are replaced in place and
// Insert reports true. Otherwise a new entry is appended to the tail of
// the bucket chain. The key is copied so the Table never aliases the
// caller's buffer.
func (t *Table) Insert(key string, value Value) (replaced bool) {
	if value.Kind == KindString {
		value.Str = strings.Clone(value.Str)
	}

	link := &t.buckets[bucketOf(key)]
	for *link != nil {
		if (*link).key == key {
			(*link).value = value
			(*link).size = value.Size()
			return true
		}
		link = &(*link).next
	}

	e := &entry{
		key:   strings.Clone(key),
		value: value,
		size:  value.Size(),
	}
	*link = e
	t.order = append(t.order, e)
	return false
}

// Lookup returns the value stored under key.
func (t *Table) Lookup(key string) (Value, bool) {
	if t == nil {
		return Value{}, false
	}
	for e := t.buckets[bucketOf(key)]; e != nil; e = e.next {
		if e.key == key {
			return e.value, true
		}
	}
	return Value{}, false
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Keys returns every key in first-insertion order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.order))
	for i, e := range t.order {
		keys[i] = e.key
	}
	return keys
}

// Walk calls fn for each entry in first-insertion order until fn returns false.
func (t *Table) Walk(fn func(Entry) bool) {
	if t == nil {
		return
	}
	for _, e := range t.order {
		if !fn(Entry{Key: e.key, Value: e.value, Size: e.size}) {
			return
		}
	}
}

// ChainLengths returns the length of every bucket chain, indexed by bucket.
func (t *Table) ChainLengths() [Buckets]int {
	var lengths [Buckets]int
	if t == nil {
		return lengths
	}
	for i, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			lengths[i]++
		}
	}
	return lengths
}

// Release unlinks every chain and returns the number of entries released.
// The Table is empty afterwards.
func (t *Table) Release() int {
	if t == nil {
		return 0
	}
	released := 0
	for i := range t.buckets {
		e := t.buckets[i]
		for e != nil {
			next := e.next
			e.next = nil
			e.value = Value{}
			released++
			e = next
		}
		t.buckets[i] = nil
	}
	t.order = nil
	return released
}
