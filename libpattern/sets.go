package libpattern

import "github.com/dgraph-io/badger/v3"

// CanonicSet allows adding canonical pattern codes and returning if an equal code has already been added.
type CanonicSet interface {

	// TryAdd adds the given canonical code if it is not already present.
	//
	// If code already is in this CanonicSet, this call has no effect and TryAdd() returns false.
	// If code isn't in this set, a copy of it is added and TryAdd() returns true.
	//
	// After one or more calls to TryAdd(), call Close() for cleanup.
	TryAdd(code []byte) bool

	// Len returns the number of codes added since the set was last closed.
	Len() int

	// Close removes all previously added items from this set.
	//
	// If you make subsequent calls to TryAdd(), be sure you call Close() when you're done.
	Close()
}

// NewCanonicSet returns an empty, in-memory CanonicSet.
func NewCanonicSet() CanonicSet {
	return &lsmSet{}
}

type lsmSet struct {
	db    *badger.DB
	count int
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) TryAdd(code []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Discard()

	added := false
	_, err := txn.Get(code)
	if err == badger.ErrKeyNotFound {
		key := append([]byte(nil), code...)
		if err = txn.Set(key, nil); err == nil {
			err = txn.Commit()
		}
		added = true
	}

	if err != nil {
		panic(err)
	}

	if added {
		set.count++
	}
	return added
}

func (set *lsmSet) Len() int {
	return set.count
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
	set.count = 0
}
