package engine

// pstNode is one node of the suffix tree: an occurrence count plus four
// children keyed by a (self, opponent) move pair packed as self<<1|opp.
type pstNode struct {
	count    int
	children [4]*pstNode
}

// pairIndex packs one round's joint moves into a child slot index.
func pairIndex(self, opp Move) int {
	return int(self)<<1 | int(opp)
}

// Predictor is a probabilistic suffix tree over joint move pairs. It counts
// fixed-depth windows of a match history and forecasts the opponent's next
// move from the most recent context. The zero value is not usable; construct
// with NewPredictor.
//
// Counts accumulate across calls: every Predict folds the full history in
// again, so contexts seen in early rounds weigh more heavily the longer a
// match runs.
type Predictor struct {
	depth int
	root  *pstNode
}

// NewPredictor returns an empty predictor counting windows of the given
// depth. Depth must be at least 1.
func NewPredictor(depth int) *Predictor {
	if depth < 1 {
		depth = 1
	}
	return &Predictor{depth: depth, root: &pstNode{}}
}

// Update inserts every depth-length window that ends strictly before the
// final history position, incrementing the count of each node along the
// window's path. The root count is never touched. Both slices must hold the
// same rounds; opp[i] and self[i] are the two moves of round i.
func (t *Predictor) Update(opp, self []Move) {
	for start := 0; start < len(opp)-t.depth-1; start++ {
		node := t.root
		for i := 0; i < t.depth; i++ {
			idx := pairIndex(self[start+i], opp[start+i])
			if node.children[idx] == nil {
				node.children[idx] = &pstNode{}
			}
			node = node.children[idx]
			node.count++
		}
	}
}

// Predict folds the given histories into the tree, then forecasts the
// opponent's next move. The walk consumes the trailing context pairs
// oldest-first and stops one pair short of the present, so the children of
// the reached node are the observed continuations of that context. The
// forecast is the opponent half of the most frequent continuation, first
// slot winning ties.
//
// Cooperate is the fallback whenever no forecast exists: history shorter
// than the depth, an unseen context, or a continuation with no counts.
func (t *Predictor) Predict(opp, self []Move) Move {
	t.Update(opp, self)
	if len(opp) < t.depth {
		return Cooperate
	}
	node := t.root
	for d := t.depth; d > 1; d-- {
		idx := pairIndex(self[len(self)-d], opp[len(opp)-d])
		if node.children[idx] == nil {
			return Cooperate
		}
		node = node.children[idx]
	}
	best, bestCount, total := 0, 0, 0
	for i, child := range node.children {
		if child == nil {
			continue
		}
		total += child.count
		if child.count > bestCount {
			best, bestCount = i, child.count
		}
	}
	if total == 0 {
		return Cooperate
	}
	if best&1 == 0 {
		return Cooperate
	}
	return Defect
}
