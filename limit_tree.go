package book

// AVL tree operations over Limit nodes. Each side of the book has its own
// tree, keyed by price. Duplicate prices cannot reach insertLimit because
// Limits are only created on a price-directory miss.
//
// There is no delete path: emptied Limits stay in the tree (see Limit).

// treeHeight treats a nil child as height -1, so a leaf has height 0.
func treeHeight(l *Limit) int {
	if l == nil {
		return -1
	}
	return l.height
}

// insertLimit descends from l by price (< goes left, >= goes right) and
// attaches n at the first empty slot, then restores heights and balance.
func (l *Limit) insertLimit(n *Limit) {
	if n.price.LessThan(l.price) {
		if l.leftChild == nil {
			l.leftChild = n
			n.parent = l
			n.updateHeight()
			n.rebalanceOnAdd()
		} else {
			l.leftChild.insertLimit(n)
		}
	} else {
		if l.rightChild == nil {
			l.rightChild = n
			n.parent = l
			n.updateHeight()
			n.rebalanceOnAdd()
		} else {
			l.rightChild.insertLimit(n)
		}
	}
}

// updateHeight recomputes every ancestor's height from this node's parent up
// to the root. The walk never stops early, even when a height is unchanged:
// O(height) per insert, conservative but correct.
func (l *Limit) updateHeight() {
	for curr := l.parent; curr != nil; curr = curr.parent {
		curr.height = max(treeHeight(curr.leftChild), treeHeight(curr.rightChild)) + 1
	}
}

// rebalanceOnAdd ascends from the inserted node's parent to the first ancestor
// whose child heights differ by more than one and applies the matching AVL
// rotation. An insert unbalances at most one node, so a single rebalancing
// step suffices.
func (l *Limit) rebalanceOnAdd() {
	curr := l.parent
	var leftHeavy bool
	for curr != nil {
		lh := treeHeight(curr.leftChild)
		rh := treeHeight(curr.rightChild)
		if lh-rh > 1 {
			leftHeavy = true
			break
		}
		if rh-lh > 1 {
			leftHeavy = false
			break
		}
		curr = curr.parent
	}

	if curr == nil {
		return
	}

	if leftHeavy {
		left := curr.leftChild
		if treeHeight(left.leftChild) >= treeHeight(left.rightChild) {
			curr.rightRotate()
		} else {
			left.leftRotate()
			curr.rightRotate()
		}
	} else {
		right := curr.rightChild
		if treeHeight(right.rightChild) >= treeHeight(right.leftChild) {
			curr.leftRotate()
		} else {
			right.rightRotate()
			curr.leftRotate()
		}
	}

	// The rotation shortened this subtree by one, so every ancestor above the
	// new subtree root still stores its pre-rotation height. curr now hangs
	// under the pivot, so walking up from curr repairs the pivot's ancestors
	// before the next insert reads them.
	curr.updateHeight()
}

// leftRotate lifts the right child above this node. The pivot absorbs this
// node as its left child and hands its former left subtree over. Only the two
// nodes whose subtrees changed get their heights recomputed. When the rotated
// node was the recorded root of its side, the book's root reference moves to
// the pivot.
func (l *Limit) leftRotate() {
	pivot := l.rightChild

	pivot.parent = l.parent
	if pivot.parent != nil {
		if pivot.parent.leftChild == l {
			pivot.parent.leftChild = pivot
		} else {
			pivot.parent.rightChild = pivot
		}
	}

	l.rightChild = pivot.leftChild
	if l.rightChild != nil {
		l.rightChild.parent = l
	}
	pivot.leftChild = l
	l.parent = pivot

	l.height = max(treeHeight(l.leftChild), treeHeight(l.rightChild)) + 1
	pivot.height = max(treeHeight(pivot.leftChild), treeHeight(pivot.rightChild)) + 1

	if l.book.buyTree == l {
		l.book.buyTree = pivot
	} else if l.book.sellTree == l {
		l.book.sellTree = pivot
	}
}

// rightRotate mirrors leftRotate.
func (l *Limit) rightRotate() {
	pivot := l.leftChild

	pivot.parent = l.parent
	if pivot.parent != nil {
		if pivot.parent.leftChild == l {
			pivot.parent.leftChild = pivot
		} else {
			pivot.parent.rightChild = pivot
		}
	}

	l.leftChild = pivot.rightChild
	if l.leftChild != nil {
		l.leftChild.parent = l
	}
	pivot.rightChild = l
	l.parent = pivot

	l.height = max(treeHeight(l.leftChild), treeHeight(l.rightChild)) + 1
	pivot.height = max(treeHeight(pivot.leftChild), treeHeight(pivot.rightChild)) + 1

	if l.book.buyTree == l {
		l.book.buyTree = pivot
	} else if l.book.sellTree == l {
		l.book.sellTree = pivot
	}
}
