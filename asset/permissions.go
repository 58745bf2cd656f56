package asset

// PermMask is a bitmask of capabilities granted on an asset. The bit
// values follow the usual virtual-world convention.
type PermMask uint32

const (
	PermTransfer PermMask = 0x00002000
	PermModify   PermMask = 0x00004000
	PermCopy     PermMask = 0x00008000
	PermMove     PermMask = 0x00080000

	PermNone PermMask = 0
	PermAll  PermMask = 0x7fffffff
)

// Has reports whether every bit in p is set in m.
func (m PermMask) Has(p PermMask) bool {
	return m&p == p
}

// Permissions carries the five independent permission masks attached to
// an asset. A capability is considered granted iff its bit is set in the
// Base mask; the other masks record what each audience would receive.
type Permissions struct {
	Base      PermMask `json:"base"`
	Owner     PermMask `json:"owner"`
	Group     PermMask `json:"group"`
	Everyone  PermMask `json:"everyone"`
	NextOwner PermMask `json:"next_owner"`
}

// DefaultPermissions grants everything to the owner and nothing to the
// group or to everyone.
func DefaultPermissions() Permissions {
	return Permissions{
		Base:      PermAll,
		Owner:     PermAll,
		Group:     PermNone,
		Everyone:  PermNone,
		NextOwner: PermAll,
	}
}

// CanTransfer reports whether the asset may be transferred.
func (p Permissions) CanTransfer() bool { return p.Base.Has(PermTransfer) }

// CanModify reports whether the asset may be modified.
func (p Permissions) CanModify() bool { return p.Base.Has(PermModify) }

// CanCopy reports whether the asset may be copied.
func (p Permissions) CanCopy() bool { return p.Base.Has(PermCopy) }
