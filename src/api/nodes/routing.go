package nodes

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/transport"
)

var (
	ErrNodeExists   = errors.New("node already exists")
	ErrNodeNotFound = errors.New("node not found")
	ErrBucketFull   = errors.New("bucket full")
	ErrSelf         = errors.New("node is the local node")
)

// All Routing tables should implement this interface
// Other interfaces defined here extend this interface
type RoutingTable interface {
	InsertNode(node transport.NodeInfo) error                   // insert a new node into the routing table
	RemoveNode(name messaging.XorName) error                    // remove a node from routing table
	Lookup(name messaging.XorName) (transport.NodeInfo, error)  // lookup node by its name
	Closest(name messaging.XorName) (transport.NodeInfo, error) // known node nearest to a name
	Peers() []transport.NodeInfo                                // every known node
}

type KademliaRouting interface {
	RoutingTable
	K() int                                               // returns the current k value (replication factor)
	A() int                                               // returns the current alpha value (concurrency)
	GetBucket(index int) []transport.NodeInfo             // returns a list of nodes in a bucket by index
	ClosestK(name messaging.XorName) []transport.NodeInfo // returns list of closest k nodes to a name
	Size() int                                            // returns the number of non-empty buckets
}

// byDistance orders nodes by xor distance to target, nearest first.
func byDistance(nodes []transport.NodeInfo, target messaging.XorName) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID.Distance(target).Cmp(nodes[j].ID.Distance(target)) < 0
	})
}

////////////////////////////////////////////////////////////////////////////////////////////
////////////////////////////////////////////////////////////////////////////////////////////

// DefaultRouter is a flat table of every known node.
type DefaultRouter struct {
	self  messaging.XorName
	nodes map[messaging.XorName]transport.NodeInfo
	mu    sync.Mutex
}

func NewDefaultRouter(self transport.NodeInfo) *DefaultRouter {
	return &DefaultRouter{
		self:  self.ID,
		nodes: make(map[messaging.XorName]transport.NodeInfo),
	}
}

func (r *DefaultRouter) InsertNode(node transport.NodeInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node.ID == r.self {
		return ErrSelf
	}
	if _, exists := r.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrNodeExists, node)
	}
	r.nodes[node.ID] = node
	return nil
}

func (r *DefaultRouter) RemoveNode(name messaging.XorName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name.Short())
	}
	delete(r.nodes, name)
	return nil
}

func (r *DefaultRouter) Lookup(name messaging.XorName) (transport.NodeInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.nodes[name]; ok {
		return info, nil
	}
	return transport.NodeInfo{}, fmt.Errorf("%w: %s", ErrNodeNotFound, name.Short())
}

func (r *DefaultRouter) Closest(name messaging.XorName) (transport.NodeInfo, error) {
	peers := r.Peers()
	if len(peers) == 0 {
		return transport.NodeInfo{}, ErrNodeNotFound
	}
	byDistance(peers, name)
	return peers[0], nil
}

func (r *DefaultRouter) Peers() []transport.NodeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]transport.NodeInfo, 0, len(r.nodes))
	for _, info := range r.nodes {
		out = append(out, info)
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////////////////
////////////////////////////////////////////////////////////////////////////////////////////

// KademliaRouter keeps up to k nodes per bucket, where bucket i holds the
// nodes sharing exactly i leading bits with the local name.
type KademliaRouter struct {
	id        messaging.XorName
	localhost string

	k       int
	a       int
	buckets [messaging.XorNameSize * 8][]transport.NodeInfo

	mu sync.Mutex
}

func NewKademliaRouter(node transport.NodeInfo, k int, a int) (*KademliaRouter, error) {
	if node.ID.IsZero() {
		return nil, fmt.Errorf("bad node id: %s", node.ID)
	}
	if k <= 0 {
		return nil, fmt.Errorf("bad k value: %d", k)
	}
	if a <= 0 || a > k {
		return nil, fmt.Errorf("bad a value: %d (k=%d)", a, k)
	}
	return &KademliaRouter{
		id:        node.ID,
		localhost: node.Address,
		k:         k,
		a:         a,
	}, nil
}

func (r *KademliaRouter) bucketIndex(name messaging.XorName) int {
	return r.id.CommonPrefix(name)
}

func (r *KademliaRouter) InsertNode(node transport.NodeInfo) error {
	if node.ID == r.id {
		return ErrSelf
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.bucketIndex(node.ID)
	for _, known := range r.buckets[i] {
		if known.ID == node.ID {
			return fmt.Errorf("%w: %s", ErrNodeExists, node)
		}
	}
	if len(r.buckets[i]) >= r.k {
		return fmt.Errorf("%w: bucket %d", ErrBucketFull, i)
	}
	r.buckets[i] = append(r.buckets[i], node)
	return nil
}

func (r *KademliaRouter) RemoveNode(name messaging.XorName) error {
	if name == r.id {
		return ErrSelf
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.bucketIndex(name)
	bucket := r.buckets[i]
	for j, known := range bucket {
		if known.ID == name {
			r.buckets[i] = append(bucket[:j:j], bucket[j+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNodeNotFound, name.Short())
}

func (r *KademliaRouter) Lookup(name messaging.XorName) (transport.NodeInfo, error) {
	if name == r.id {
		return transport.NodeInfo{}, ErrSelf
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, known := range r.buckets[r.bucketIndex(name)] {
		if known.ID == name {
			return known, nil
		}
	}
	return transport.NodeInfo{}, fmt.Errorf("%w: %s", ErrNodeNotFound, name.Short())
}

func (r *KademliaRouter) Closest(name messaging.XorName) (transport.NodeInfo, error) {
	closest := r.ClosestK(name)
	if len(closest) == 0 {
		return transport.NodeInfo{}, ErrNodeNotFound
	}
	return closest[0], nil
}

func (r *KademliaRouter) Peers() []transport.NodeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []transport.NodeInfo
	for _, bucket := range r.buckets {
		out = append(out, bucket...)
	}
	return out
}

func (r *KademliaRouter) K() int {
	return r.k
}

func (r *KademliaRouter) A() int {
	return r.a
}

func (r *KademliaRouter) GetBucket(index int) []transport.NodeInfo {
	if index < 0 || index >= len(r.buckets) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transport.NodeInfo(nil), r.buckets[index]...)
}

func (r *KademliaRouter) ClosestK(name messaging.XorName) []transport.NodeInfo {
	peers := r.Peers()
	byDistance(peers, name)
	if len(peers) > r.k {
		peers = peers[:r.k]
	}
	return peers
}

func (r *KademliaRouter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := 0
	for _, bucket := range r.buckets {
		if len(bucket) > 0 {
			size++
		}
	}
	return size
}
