// Package scene is a minimal transform hierarchy: nodes carry a local
// position and rotation relative to their parent, and world transforms are
// composed on demand up the parent chain.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is an element of the transform tree. Scale is not modelled; every
// node in a cube assembly has unit scale.
type Node struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Quat

	parent   *Node
	children []*Node
}

// NewNode creates a detached node with the identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
	}
}

// Parent returns the parent node or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// AddChild appends child to n, detaching it from its previous parent. The
// child's local transform is kept, so its world transform generally changes.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from n. It is a no-op if child is not a child
// of n.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Attach reparents child under n while preserving its world transform.
func (n *Node) Attach(child *Node) {
	if child == nil || child == n {
		return
	}
	wp := child.WorldPosition()
	wq := child.WorldQuaternion()

	n.AddChild(child)

	child.Position = n.WorldToLocal(wp)
	child.Rotation = n.WorldQuaternion().Inverse().Mul(wq).Normalize()
}

// WorldQuaternion returns the composed rotation from the root to n.
func (n *Node) WorldQuaternion() mgl64.Quat {
	if n.parent == nil {
		return n.Rotation
	}
	return n.parent.WorldQuaternion().Mul(n.Rotation)
}

// WorldPosition returns the position of n's origin in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	if n.parent == nil {
		return n.Position
	}
	return n.parent.LocalToWorld(n.Position)
}

// LocalToWorld maps a point from n's local space into world space.
func (n *Node) LocalToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return n.WorldPosition().Add(n.WorldQuaternion().Rotate(v))
}

// WorldToLocal maps a world-space point into n's local space.
func (n *Node) WorldToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return n.WorldQuaternion().Inverse().Rotate(v.Sub(n.WorldPosition()))
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
