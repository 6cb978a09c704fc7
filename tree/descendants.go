package tree

import "github.com/vireo/branchsearch/state"

// depthBucket holds every node discovered at one depth, keyed by transposition
// tag, plus the insertion order needed for deterministic iteration (spec.md
// design note: order must mirror the underlying map's insertion order).
type depthBucket struct {
	byTag map[state.Tag]*AlgorithmNode
	order []*AlgorithmNode
}

func newDepthBucket() *depthBucket {
	return &depthBucket{byTag: make(map[state.Tag]*AlgorithmNode)}
}

// Descendants is the depth-bucketed `depth -> (tag -> node)` index (C1). It
// also tracks the contiguous range of depths currently populated.
type Descendants struct {
	buckets  map[int]*depthBucket
	count    int
	minDepth *int
	maxDepth *int
}

// NewDescendants returns an empty descendant index.
func NewDescendants() *Descendants {
	return &Descendants{buckets: make(map[int]*depthBucket)}
}

// Count returns the total number of distinct nodes indexed.
func (d *Descendants) Count() int { return d.count }

// MinDepth returns the smallest populated depth, or (0, false) if empty.
func (d *Descendants) MinDepth() (int, bool) {
	if d.minDepth == nil {
		return 0, false
	}
	return *d.minDepth, true
}

// MaxDepth returns the largest populated depth, or (0, false) if empty.
func (d *Descendants) MaxDepth() (int, bool) {
	if d.maxDepth == nil {
		return 0, false
	}
	return *d.maxDepth, true
}

// IsNewGeneration reports whether depth is exactly one past the current max
// (or the index is empty), i.e. inserting there would extend the range
// rather than fill an existing bucket.
func (d *Descendants) IsNewGeneration(depth int) bool {
	if d.maxDepth == nil {
		return true
	}
	return depth == *d.maxDepth+1
}

// Add inserts node at depth = node.Node.Depth, keyed by its state tag.
// Depth must be within [minDepth, maxDepth+1] -- gaps are rejected with
// ErrOutOfRange.
func (d *Descendants) Add(node *AlgorithmNode) error {
	depth := node.Node.Depth
	switch {
	case d.minDepth == nil:
		d.minDepth = intPtr(depth)
		d.maxDepth = intPtr(depth)
	case depth >= *d.minDepth && depth <= *d.maxDepth:
		// within range, fine
	case depth == *d.maxDepth+1:
		d.maxDepth = intPtr(depth)
	default:
		return ErrOutOfRange
	}

	bucket, ok := d.buckets[depth]
	if !ok {
		bucket = newDepthBucket()
		d.buckets[depth] = bucket
	}
	tag := node.Node.State.Tag()
	if old, exists := bucket.byTag[tag]; exists {
		for i, n := range bucket.order {
			if n == old {
				bucket.order[i] = node
				break
			}
		}
	} else {
		bucket.order = append(bucket.order, node)
		d.count++
	}
	bucket.byTag[tag] = node
	return nil
}

// Remove decrements the bucket at node's depth; if the bucket empties and
// sits at a range boundary, the boundary retracts. If the index becomes
// empty altogether, both bounds reset to "unset".
func (d *Descendants) Remove(node *AlgorithmNode) error {
	depth := node.Node.Depth
	bucket, ok := d.buckets[depth]
	if !ok {
		return nil
	}
	tag := node.Node.State.Tag()
	if _, exists := bucket.byTag[tag]; !exists {
		return nil
	}
	delete(bucket.byTag, tag)
	for i, n := range bucket.order {
		if n == node {
			bucket.order = append(bucket.order[:i], bucket.order[i+1:]...)
			break
		}
	}
	d.count--

	if len(bucket.byTag) == 0 {
		delete(d.buckets, depth)
		if d.count == 0 {
			d.minDepth = nil
			d.maxDepth = nil
			return nil
		}
		if d.maxDepth != nil && depth == *d.maxDepth {
			for *d.maxDepth > *d.minDepth {
				*d.maxDepth--
				if _, ok := d.buckets[*d.maxDepth]; ok {
					break
				}
			}
		}
		if d.minDepth != nil && depth == *d.minDepth {
			for *d.minDepth < *d.maxDepth {
				*d.minDepth++
				if _, ok := d.buckets[*d.minDepth]; ok {
					break
				}
			}
		}
	}
	return nil
}

// Contains reports whether a node is indexed at (depth, tag).
func (d *Descendants) Contains(depth int, tag state.Tag) bool {
	bucket, ok := d.buckets[depth]
	if !ok {
		return false
	}
	_, ok = bucket.byTag[tag]
	return ok
}

// Get returns the node at (depth, tag), if any.
func (d *Descendants) Get(depth int, tag state.Tag) (*AlgorithmNode, bool) {
	bucket, ok := d.buckets[depth]
	if !ok {
		return nil, false
	}
	n, ok := bucket.byTag[tag]
	return n, ok
}

// IterateAt yields every node at depth, in insertion order.
func (d *Descendants) IterateAt(depth int) []*AlgorithmNode {
	bucket, ok := d.buckets[depth]
	if !ok {
		return nil
	}
	out := make([]*AlgorithmNode, len(bucket.order))
	copy(out, bucket.order)
	return out
}

// Depths returns the populated depths in ascending order.
func (d *Descendants) Depths() []int {
	if d.minDepth == nil {
		return nil
	}
	out := make([]int, 0, *d.maxDepth-*d.minDepth+1)
	for depth := *d.minDepth; depth <= *d.maxDepth; depth++ {
		if _, ok := d.buckets[depth]; ok {
			out = append(out, depth)
		}
	}
	return out
}

func intPtr(v int) *int { return &v }
