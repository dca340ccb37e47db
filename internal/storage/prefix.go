package storage

// PrefixDB namespaces keys of an inner DB under a fixed prefix, such as the
// wallet-state or settings keyspace of one store.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB wraps inner. The prefix is copied.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixDB) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	return append(out, k...)
}

// Get retrieves a value by key.
func (p *PrefixDB) Get(key []byte) ([]byte, error) { return p.inner.Get(p.key(key)) }

// Put stores a key-value pair.
func (p *PrefixDB) Put(key, value []byte) error { return p.inner.Put(p.key(key), value) }

// Delete removes a key.
func (p *PrefixDB) Delete(key []byte) error { return p.inner.Delete(p.key(key)) }

// Has checks if a key exists.
func (p *PrefixDB) Has(key []byte) (bool, error) { return p.inner.Has(p.key(key)) }

// ForEach iterates within the namespace. Keys passed to fn have the
// namespace prefix stripped.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[len(p.prefix):], value)
	})
}

// DeleteAll removes every key in the namespace.
func (p *PrefixDB) DeleteAll() error {
	var keys [][]byte
	err := p.inner.ForEach(p.prefix, func(key, _ []byte) error {
		keys = append(keys, append([]byte(nil), key...))
		return nil
	})
	if err != nil {
		return err
	}
	b := p.NewBatch()
	for _, k := range keys {
		if err := b.Delete(k[len(p.prefix):]); err != nil {
			return err
		}
	}
	return b.Commit()
}

// Close is a no-op; the inner DB owns its lifecycle.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch in the namespace. It is atomic when the inner
// DB is a Batcher and applied write by write otherwise.
func (p *PrefixDB) NewBatch() Batch {
	if batcher, ok := p.inner.(Batcher); ok {
		return &prefixBatch{inner: batcher.NewBatch(), db: p}
	}
	return &prefixBatch{db: p}
}

type prefixBatch struct {
	inner Batch // nil: write through
	db    *PrefixDB
	ops   []memoryOp
}

func (b *prefixBatch) Put(key, value []byte) error {
	if b.inner != nil {
		return b.inner.Put(b.db.key(key), value)
	}
	v := append([]byte{}, value...)
	b.ops = append(b.ops, memoryOp{key: string(key), value: v})
	return nil
}

func (b *prefixBatch) Delete(key []byte) error {
	if b.inner != nil {
		return b.inner.Delete(b.db.key(key))
	}
	b.ops = append(b.ops, memoryOp{key: string(key)})
	return nil
}

func (b *prefixBatch) Commit() error {
	if b.inner != nil {
		return b.inner.Commit()
	}
	for _, op := range b.ops {
		var err error
		if op.value == nil {
			err = b.db.Delete([]byte(op.key))
		} else {
			err = b.db.Put([]byte(op.key), op.value)
		}
		if err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}
