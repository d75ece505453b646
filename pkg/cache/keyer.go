package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey is the key of a fetched snapshot.
	SnapshotKey(source string) string
	// LayoutKey is the key of a settled layout of the snapshot with hash
	// snapshotHash.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string
	// ArtifactKey is the key of a rendered layout. contentHash must cover
	// both the snapshot and the layout, since labels and types change the
	// output without moving any node.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the parameters that change a layout.
type LayoutKeyOpts struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Seed     uint64  `json:"seed"`
	MaxTicks int     `json:"max_ticks"`
	Physics  string  `json:"physics,omitempty"`
}

// ArtifactKeyOpts are the parameters that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Theme   string  `json:"theme"`
	Labels  bool    `json:"labels"`
	Padding float64 `json:"padding,omitempty"`
	Title   string  `json:"title,omitempty"`
}

// DefaultKeyer builds keys as kind:hash(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey hashes the source location.
func (DefaultKeyer) SnapshotKey(source string) string {
	return fmt.Sprintf("snapshot:%s", Hash([]byte(source)))
}

// LayoutKey combines the snapshot hash with the layout parameters.
func (DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey combines the content hash with the render parameters.
func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, so that several
// deployments can share one Redis without colliding.
//
//	k := cache.NewScopedKeyer(nil, "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SnapshotKey(source string) string {
	return k.prefix + k.inner.SnapshotKey(source)
}

func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(contentHash, opts)
}
