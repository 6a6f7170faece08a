package sfs

// This file implements the block allocator (spec.md §4.2). State lives
// entirely in the on-disk block-table region; nothing here is cached
// across calls except scratch slices local to the current operation,
// per spec.md §9's "scoped resources" note and §5's single-threaded
// resource model. The chain itself is pure integer data -- a linked
// list expressed as indices into the block table, never as pointers
// (spec.md §9: "use an arena-plus-index strategy").

// findFreePair scans the block table for the first index i such that
// slots i and i+1 are both SFS_BLOCKIDX_EMPTY. mkdir always needs a
// two-block chain, and the reference implementation requires the pair
// to be adjacent (spec.md §9); this keeps that behavior since nothing
// in invariants I1-I6 depends on relaxing it.
func (img *Image) findFreePair() (blockidx_t, blockidx_t, error) {
	tbl, err := img.readRegion(int64(SFS_BLOCKTBL_OFF), SFS_BLOCKTBL_NENTRIES*2)
	if err != nil {
		return 0, 0, err
	}
	for i := 0; i < SFS_BLOCKTBL_NENTRIES-1; i++ {
		a := blockidx_t(byteOrder.Uint16(tbl[i*2:]))
		b := blockidx_t(byteOrder.Uint16(tbl[(i+1)*2:]))
		if a == SFS_BLOCKIDX_EMPTY && b == SFS_BLOCKIDX_EMPTY {
			return blockidx_t(i), blockidx_t(i + 1), nil
		}
	}
	return 0, 0, ErrNoSpace
}

// findFree scans the block table for n free blocks, not necessarily
// adjacent, and returns them in scan order.
func (img *Image) findFree(n int) ([]blockidx_t, error) {
	tbl, err := img.readRegion(int64(SFS_BLOCKTBL_OFF), SFS_BLOCKTBL_NENTRIES*2)
	if err != nil {
		return nil, err
	}
	found := make([]blockidx_t, 0, n)
	for i := 0; i < SFS_BLOCKTBL_NENTRIES && len(found) < n; i++ {
		if blockidx_t(byteOrder.Uint16(tbl[i*2:])) == SFS_BLOCKIDX_EMPTY {
			found = append(found, blockidx_t(i))
		}
	}
	if len(found) < n {
		return nil, ErrNoSpace
	}
	return found, nil
}

// chainFollow returns the full list of block indices in the chain
// starting at first, not including the terminating SFS_BLOCKIDX_END.
// It guards against a corrupt on-disk cycle (invariant I2) by bounding
// the walk at SFS_BLOCKTBL_NENTRIES steps, matching testable property P1.
func (img *Image) chainFollow(first blockidx_t) ([]blockidx_t, error) {
	if first == SFS_BLOCKIDX_END || first == SFS_BLOCKIDX_EMPTY {
		return nil, nil
	}
	var chain []blockidx_t
	cur := first
	for i := 0; i < SFS_BLOCKTBL_NENTRIES; i++ {
		chain = append(chain, cur)
		next, err := img.readBlockIdx(cur)
		if err != nil {
			return nil, err
		}
		if next == SFS_BLOCKIDX_END {
			return chain, nil
		}
		cur = next
	}
	return nil, ErrIO
}

// chainLength returns the number of blocks in the chain starting at first.
func (img *Image) chainLength(first blockidx_t) (int, error) {
	chain, err := img.chainFollow(first)
	if err != nil {
		return 0, err
	}
	return len(chain), nil
}

// chainAppend links newBlocks[0..n-1] onto the end of the chain starting
// at first (or establishes a fresh chain if first is SFS_BLOCKIDX_END)
// and terminates the new tail with SFS_BLOCKIDX_END. It returns the
// (possibly unchanged) head of the chain.
func (img *Image) chainAppend(first blockidx_t, newBlocks []blockidx_t) (blockidx_t, error) {
	if len(newBlocks) == 0 {
		return first, nil
	}
	for i := 0; i < len(newBlocks)-1; i++ {
		if err := img.writeBlockIdx(newBlocks[i], newBlocks[i+1]); err != nil {
			return first, err
		}
	}
	if err := img.writeBlockIdx(newBlocks[len(newBlocks)-1], SFS_BLOCKIDX_END); err != nil {
		return first, err
	}

	if first == SFS_BLOCKIDX_END {
		return newBlocks[0], nil
	}

	tail, err := img.chainTail(first)
	if err != nil {
		return first, err
	}
	if err := img.writeBlockIdx(tail, newBlocks[0]); err != nil {
		return first, err
	}
	return first, nil
}

// chainTail returns the last block index in the chain starting at first.
func (img *Image) chainTail(first blockidx_t) (blockidx_t, error) {
	cur := first
	for i := 0; i < SFS_BLOCKTBL_NENTRIES; i++ {
		next, err := img.readBlockIdx(cur)
		if err != nil {
			return 0, err
		}
		if next == SFS_BLOCKIDX_END {
			return cur, nil
		}
		cur = next
	}
	return 0, ErrIO
}

// chainFree walks the chain starting at first and writes
// SFS_BLOCKIDX_EMPTY into every slot it visits.
func (img *Image) chainFree(first blockidx_t) error {
	chain, err := img.chainFollow(first)
	if err != nil {
		return err
	}
	for _, idx := range chain {
		if err := img.writeBlockIdx(idx, SFS_BLOCKIDX_EMPTY); err != nil {
			return err
		}
	}
	return nil
}

// chainTruncateTo frees the trailing len(chain)-keep blocks of chain
// and, if keep > 0, terminates the new tail with SFS_BLOCKIDX_END. It
// is the shared core of truncate's shrink branch (spec.md §4.5).
func (img *Image) chainTruncateTo(chain []blockidx_t, keep int) error {
	for i := keep; i < len(chain); i++ {
		if err := img.writeBlockIdx(chain[i], SFS_BLOCKIDX_EMPTY); err != nil {
			return err
		}
	}
	if keep > 0 {
		return img.writeBlockIdx(chain[keep-1], SFS_BLOCKIDX_END)
	}
	return nil
}
