// Package payload carries the signature and port information attached to
// each interval of a compiled address set. The address algebra itself
// never inspects a payload's contents -- it only merges, copies, or
// releases it through the Strategy it is handed, keeping the geometric
// code in package addrset free of signature/port specific logic (see
// spec.md "Payload propagation").
package payload

// Payload is opaque to the address algebra. SigIDs and PortGroups are the
// two concrete attachments named by spec.md §1 ("the complete rule-matching
// pipeline" and "the parallel port-set algebra") as external collaborators;
// the algebra only ever touches a Payload through a Strategy.
type Payload struct {
	SigIDs    []uint32
	PortGroup string
	// refs counts references taken through DefaultStrategy's Copy (see the
	// Copy flag on the owning interval); its Release decrements it. Nothing
	// in this package reads the count, and a Payload is reclaimed by the
	// garbage collector like any other value.
	refs int
}

// New returns a Payload carrying the given signature IDs.
func New(sigIDs ...uint32) *Payload {
	return &Payload{SigIDs: append([]uint32(nil), sigIDs...), refs: 1}
}

// Strategy factors the merge/copy/release behavior of a Payload out of the
// interval calculus, per spec.md §9. The zero value has all three functions
// nil; addrset.NewSetHead replaces a Strategy whose Merge is nil with
// DefaultStrategy.
type Strategy struct {
	// Merge combines a and b into a new Payload representing their union,
	// used when cut() produces a piece covered by both of the original
	// intervals.
	Merge func(a, b *Payload) *Payload
	// Copy returns a reference to p suitable for attaching to a second
	// interval cell without allocating a new Payload, used when cut()
	// produces a piece that only carries one side's payload.
	Copy func(p *Payload) *Payload
	// Release drops one reference to p, freeing it once the last
	// reference is gone.
	Release func(p *Payload)
}

// DefaultStrategy merges signature ID sets by concatenation (deduplicated),
// copies by reference-counting, and releases by decrementing the refcount.
func DefaultStrategy() Strategy {
	return Strategy{
		Merge:   mergeDedup,
		Copy:    copyRef,
		Release: releaseRef,
	}
}

func mergeDedup(a, b *Payload) *Payload {
	if a == nil {
		return copyRef(b)
	}
	if b == nil {
		return copyRef(a)
	}
	seen := make(map[uint32]struct{}, len(a.SigIDs)+len(b.SigIDs))
	merged := &Payload{refs: 1}
	for _, s := range a.SigIDs {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			merged.SigIDs = append(merged.SigIDs, s)
		}
	}
	for _, s := range b.SigIDs {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			merged.SigIDs = append(merged.SigIDs, s)
		}
	}
	if a.PortGroup != "" {
		merged.PortGroup = a.PortGroup
	} else {
		merged.PortGroup = b.PortGroup
	}
	return merged
}

func copyRef(p *Payload) *Payload {
	if p == nil {
		return nil
	}
	p.refs++
	return p
}

func releaseRef(p *Payload) {
	if p == nil {
		return
	}
	p.refs--
}
