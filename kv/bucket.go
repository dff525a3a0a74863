// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides a logical key space within a kv store by prefixing keys.
type Bucket string

type bucketGetter struct {
	b   Bucket
	src Getter
}

func (g *bucketGetter) Get(key []byte) ([]byte, error) {
	return g.src.Get(g.b.key(key))
}

func (g *bucketGetter) Has(key []byte) (bool, error) {
	return g.src.Has(g.b.key(key))
}

func (g *bucketGetter) IsNotFound(err error) bool {
	return g.src.IsNotFound(err)
}

type bucketPutter struct {
	b   Bucket
	src Putter
}

func (p *bucketPutter) Put(key, value []byte) error {
	return p.src.Put(p.b.key(key), value)
}

func (p *bucketPutter) Delete(key []byte) error {
	return p.src.Delete(p.b.key(key))
}

func (p *bucketPutter) NewBatch() Batch {
	return &bucketBatch{p.b, p.src.NewBatch()}
}

type bucketBatch struct {
	b   Bucket
	src Batch
}

func (b *bucketBatch) Put(key, value []byte) error {
	return b.src.Put(b.b.key(key), value)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.src.Delete(b.b.key(key))
}

func (b *bucketBatch) NewBatch() Batch { return &bucketBatch{b.b, b.src.NewBatch()} }
func (b *bucketBatch) Len() int        { return b.src.Len() }
func (b *bucketBatch) Write() error    { return b.src.Write() }

type bucketStore struct {
	bucketGetter
	bucketPutter
}

func (s *bucketStore) IsNotFound(err error) bool { return s.bucketGetter.IsNotFound(err) }

func (b Bucket) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &bucketGetter{b, src}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &bucketPutter{b, src}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src GetPutter) GetPutter {
	return &bucketStore{bucketGetter{b, src}, bucketPutter{b, src}}
}
