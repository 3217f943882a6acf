package cache

import "github.com/spf13/afero"

// NopStore discards everything. Used for --no-cache runs and as the
// degraded fallback when a real backend fails to open.
type NopStore struct{}

// NewNopStore returns the shared no-op store.
func NewNopStore() *NopStore {
	return &NopStore{}
}

func (*NopStore) Get(string) (Entry, bool)        { return Entry{}, false }
func (*NopStore) Put(Entry) error                 { return nil }
func (*NopStore) Delete(string) error             { return nil }
func (*NopStore) Len() int                        { return 0 }
func (*NopStore) Clear() error                    { return nil }
func (*NopStore) Prune(afero.Fs) (int, error)     { return 0, nil }
func (*NopStore) Flush() error                    { return nil }
func (*NopStore) Close() error                    { return nil }
