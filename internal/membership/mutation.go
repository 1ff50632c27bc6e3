package membership

// Target identifies which membership structure a key addresses.
type Target int

const (
	// TargetOwned is the system-reserved Owned collection.
	TargetOwned Target = iota
	// TargetWishlist is the system-reserved Wishlist collection.
	TargetWishlist
	// TargetList is a user-created custom list, qualified by ListID.
	TargetList
)

func (t Target) String() string {
	switch t {
	case TargetOwned:
		return "owned"
	case TargetWishlist:
		return "wishlist"
	default:
		return "list"
	}
}

// Key addresses one membership fact: is this set in this structure.
type Key struct {
	Target Target
	ListID int64 // zero unless Target is TargetList
	SetNum string
}

// half is one key's worth of an optimistic change, with the effective value
// captured at creation time so a rollback can restore what the user last saw.
type half struct {
	key     Key
	desired bool
	prior   bool
}

// Mutation is a transient optimistic change not yet confirmed by the server.
// A plain toggle has one half; a toggle that trips the Owned/Wishlist
// exclusivity invariant carries a second half clearing the opposite
// collection, applied and reverted as one unit.
type Mutation struct {
	seq    uint64
	halves []half
}

// Key returns the key of the requested toggle (the first half).
func (m *Mutation) Key() Key { return m.halves[0].key }

// Desired returns the requested end state.
func (m *Mutation) Desired() bool { return m.halves[0].desired }

// Prior returns the effective state captured when the mutation was created.
func (m *Mutation) Prior() bool { return m.halves[0].prior }

// Combined reports whether the mutation carries an exclusivity companion,
// which requires a second network request.
func (m *Mutation) Combined() bool { return len(m.halves) > 1 }

// CompanionKey returns the key of the exclusivity companion. Only valid when
// Combined reports true.
func (m *Mutation) CompanionKey() Key { return m.halves[1].key }
