package sfs

import "testing"

func TestFindFreePair(t *testing.T) {
	img := openTempImage(t)

	b1, b2, err := img.findFreePair()
	if err != nil {
		t.Fatalf("findFreePair: %v", err)
	}
	if b2 != b1+1 {
		t.Fatalf("findFreePair returned non-adjacent pair %d, %d", b1, b2)
	}
}

func TestChainAppendFollowFree(t *testing.T) {
	img := openTempImage(t)

	blocks, err := img.findFree(3)
	if err != nil {
		t.Fatalf("findFree: %v", err)
	}

	head, err := img.chainAppend(SFS_BLOCKIDX_END, blocks)
	if err != nil {
		t.Fatalf("chainAppend: %v", err)
	}
	if head != blocks[0] {
		t.Fatalf("chainAppend head = %d, want %d", head, blocks[0])
	}

	chain, err := img.chainFollow(head)
	if err != nil {
		t.Fatalf("chainFollow: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chainFollow length = %d, want 3", len(chain))
	}
	for i, b := range blocks {
		if chain[i] != b {
			t.Errorf("chain[%d] = %d, want %d", i, chain[i], b)
		}
	}

	more, err := img.findFree(2)
	if err != nil {
		t.Fatalf("findFree: %v", err)
	}
	head2, err := img.chainAppend(head, more)
	if err != nil {
		t.Fatalf("chainAppend (grow): %v", err)
	}
	if head2 != head {
		t.Fatalf("chainAppend changed head on grow: got %d, want %d", head2, head)
	}
	grown, err := img.chainFollow(head)
	if err != nil {
		t.Fatalf("chainFollow after grow: %v", err)
	}
	if len(grown) != 5 {
		t.Fatalf("chainFollow length after grow = %d, want 5", len(grown))
	}

	if err := img.chainFree(head); err != nil {
		t.Fatalf("chainFree: %v", err)
	}
	for _, b := range grown {
		v, err := img.readBlockIdx(b)
		if err != nil {
			t.Fatalf("readBlockIdx: %v", err)
		}
		if v != SFS_BLOCKIDX_EMPTY {
			t.Errorf("block %d not freed, reads %d", b, v)
		}
	}
}

func TestChainTruncateTo(t *testing.T) {
	img := openTempImage(t)

	blocks, err := img.findFree(4)
	if err != nil {
		t.Fatalf("findFree: %v", err)
	}
	head, err := img.chainAppend(SFS_BLOCKIDX_END, blocks)
	if err != nil {
		t.Fatalf("chainAppend: %v", err)
	}

	if err := img.chainTruncateTo(blocks, 2); err != nil {
		t.Fatalf("chainTruncateTo: %v", err)
	}
	chain, err := img.chainFollow(head)
	if err != nil {
		t.Fatalf("chainFollow: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length after truncate = %d, want 2", len(chain))
	}

	for _, b := range blocks[2:] {
		v, err := img.readBlockIdx(b)
		if err != nil {
			t.Fatalf("readBlockIdx: %v", err)
		}
		if v != SFS_BLOCKIDX_EMPTY {
			t.Errorf("truncated block %d not freed, reads %d", b, v)
		}
	}
}

func TestFindFreeExhaustion(t *testing.T) {
	img := openTempImage(t)

	_, err := img.findFree(SFS_BLOCKTBL_NENTRIES + 1)
	if err != ErrNoSpace {
		t.Fatalf("findFree over capacity: err = %v, want ErrNoSpace", err)
	}
}
