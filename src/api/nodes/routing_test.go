package nodes

import (
	"errors"
	"testing"

	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/transport"
)

// nameWithPrefix returns a name whose first byte is b.
func nameWithPrefix(b byte, tail byte) messaging.XorName {
	var n messaging.XorName
	n[0] = b
	n[messaging.XorNameSize-1] = tail
	return n
}

func info(name messaging.XorName) transport.NodeInfo {
	return transport.NewNodeInfo(name, "localhost:0")
}

func TestDefaultRouter(t *testing.T) {
	self := nameWithPrefix(0x00, 1)
	r := NewDefaultRouter(info(self))

	a := nameWithPrefix(0x80, 1)
	b := nameWithPrefix(0x01, 1)
	for _, n := range []messaging.XorName{a, b} {
		if err := r.InsertNode(info(n)); err != nil {
			t.Fatalf("InsertNode(%s): %v", n.Short(), err)
		}
	}
	if err := r.InsertNode(info(a)); !errors.Is(err, ErrNodeExists) {
		t.Fatalf("duplicate insert error = %v", err)
	}
	if err := r.InsertNode(info(self)); !errors.Is(err, ErrSelf) {
		t.Fatalf("self insert error = %v", err)
	}

	if got, err := r.Lookup(b); err != nil || got.ID != b {
		t.Fatalf("Lookup = %v, %v", got, err)
	}
	if got, err := r.Closest(nameWithPrefix(0x81, 0)); err != nil || got.ID != a {
		t.Fatalf("Closest = %v, %v, want %s", got, err, a.Short())
	}

	if err := r.RemoveNode(a); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if _, err := r.Lookup(a); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Lookup after remove error = %v", err)
	}
	if err := r.RemoveNode(a); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("second remove error = %v", err)
	}
	if len(r.Peers()) != 1 {
		t.Fatalf("Peers = %v", r.Peers())
	}
}

func TestNewKademliaRouterValidates(t *testing.T) {
	self := info(nameWithPrefix(0x10, 0))
	tests := []struct {
		name string
		node transport.NodeInfo
		k, a int
	}{
		{"zero id", info(messaging.XorName{}), 2, 1},
		{"zero k", self, 0, 1},
		{"alpha above k", self, 2, 3},
		{"zero alpha", self, 2, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewKademliaRouter(tc.node, tc.k, tc.a); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestKademliaRouterBuckets(t *testing.T) {
	self := nameWithPrefix(0x00, 0xff)
	r, err := NewKademliaRouter(info(self), 2, 1)
	if err != nil {
		t.Fatalf("NewKademliaRouter: %v", err)
	}

	// first bit differs: bucket 0
	far := []messaging.XorName{nameWithPrefix(0x80, 1), nameWithPrefix(0x90, 2), nameWithPrefix(0xa0, 3)}
	if err := r.InsertNode(info(far[0])); err != nil {
		t.Fatal(err)
	}
	if err := r.InsertNode(info(far[1])); err != nil {
		t.Fatal(err)
	}
	if err := r.InsertNode(info(far[2])); !errors.Is(err, ErrBucketFull) {
		t.Fatalf("third insert into bucket 0 error = %v", err)
	}

	// shares seven leading bits: bucket 7
	near := nameWithPrefix(0x01, 4)
	if err := r.InsertNode(info(near)); err != nil {
		t.Fatal(err)
	}
	if got := r.GetBucket(7); len(got) != 1 || got[0].ID != near {
		t.Fatalf("bucket 7 = %v", got)
	}
	if got := len(r.GetBucket(0)); got != 2 {
		t.Fatalf("bucket 0 holds %d nodes", got)
	}
	if r.Size() != 2 {
		t.Fatalf("Size = %d, want 2", r.Size())
	}
	if r.GetBucket(-1) != nil || r.GetBucket(1<<10) != nil {
		t.Fatal("out of range bucket is not nil")
	}

	closest := r.ClosestK(nameWithPrefix(0x91, 0))
	if len(closest) != r.K() {
		t.Fatalf("ClosestK returned %d nodes, want %d", len(closest), r.K())
	}
	if closest[0].ID != far[1] || closest[1].ID != far[0] {
		t.Fatalf("ClosestK order = %v", closest)
	}

	if err := r.RemoveNode(far[0]); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if err := r.InsertNode(info(far[2])); err != nil {
		t.Fatalf("insert after remove: %v", err)
	}
	if _, err := r.Lookup(self); !errors.Is(err, ErrSelf) {
		t.Fatalf("Lookup(self) error = %v", err)
	}
}
