package split

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ErrNotEnoughOOV is returned when the test target cannot be reached by
// moving a small enough share of clusters out of train.
var ErrNotEnoughOOV = errors.New("not enough OOV utterances or train set too small")

// Options controls the split.
type Options struct {
	// MinTest is the target number of test utterances.
	MinTest int
	// RemovalDivisor caps removals at len(candidates)/RemovalDivisor clusters.
	RemovalDivisor int
}

// DefaultOptions returns a 1000 utterance target with at most a fifth of
// the OOV clusters taken out of train.
func DefaultOptions() Options {
	return Options{MinTest: 1000, RemovalDivisor: 5}
}

// Result is the outcome of Split. Train and Test are disjoint.
type Result struct {
	Train []string
	Test  []string
	// Removed lists clusters taken out of train, in removal order.
	Removed []string
	// Dropped holds utterances in neither list: OOV utterances whose cluster
	// stays in train and in-vocabulary utterances of removed clusters.
	Dropped []string

	NumOOV      int
	InitialTest int
}

type candidate struct {
	cluster string
	count   int // train occurrences, math.MaxInt when absent from train
	oovs    int
	inTrain bool
}

// Split assigns in-vocabulary utterances to train and OOV utterances whose
// cluster never occurs in train to test. When that leaves fewer than
// opts.MinTest test utterances, the OOV-bearing clusters with the fewest
// train utterances are removed from train, one at a time, until their OOV
// utterances fill the gap.
func Split(c *Corpus, vocab Vocab, opts Options) (*Result, error) {
	if opts.RemovalDivisor <= 0 {
		return nil, errors.Errorf("removal divisor must be positive, got %d", opts.RemovalDivisor)
	}

	var oov, other []string
	for _, u := range c.Utts {
		if _, ok := c.Cluster[u.ID]; !ok {
			return nil, errors.Wrap(ErrUnknownUtterance, u.ID)
		}
		if vocab.HasOOV(u.Words) {
			oov = append(oov, u.ID)
		} else {
			other = append(other, u.ID)
		}
	}

	trainCount := make(map[string]int)
	for _, utt := range other {
		trainCount[c.Cluster[utt]]++
	}

	res := &Result{NumOOV: len(oov)}
	for _, utt := range oov {
		if _, ok := trainCount[c.Cluster[utt]]; !ok {
			res.InitialTest++
		}
	}

	removed := make(map[string]bool)
	if res.InitialTest < opts.MinTest {
		clusters, err := chooseRemovals(oov, c.Cluster, trainCount, opts.MinTest-res.InitialTest, opts.RemovalDivisor)
		if err != nil {
			return nil, err
		}
		for _, cid := range clusters {
			removed[cid] = true
			delete(trainCount, cid)
		}
		res.Removed = clusters
	}

	isTest := make(map[string]bool)
	for _, utt := range oov {
		if _, ok := trainCount[c.Cluster[utt]]; !ok {
			res.Test = append(res.Test, utt)
			isTest[utt] = true
		}
	}
	isTrain := make(map[string]bool)
	for _, utt := range other {
		if !removed[c.Cluster[utt]] {
			res.Train = append(res.Train, utt)
			isTrain[utt] = true
		}
	}
	for _, u := range c.Utts {
		if !isTest[u.ID] && !isTrain[u.ID] {
			res.Dropped = append(res.Dropped, u.ID)
		}
	}
	return res, nil
}

// chooseRemovals ranks the OOV-bearing clusters by train count, ascending,
// with clusters absent from train ranked last, and takes clusters from the
// front until they contribute need OOV utterances.
func chooseRemovals(oov []string, cluster map[string]string, trainCount map[string]int, need, divisor int) ([]string, error) {
	var cands []*candidate
	byCluster := make(map[string]*candidate)
	for _, utt := range oov {
		cid := cluster[utt]
		cand, ok := byCluster[cid]
		if !ok {
			cand = &candidate{cluster: cid, count: math.MaxInt}
			if n, in := trainCount[cid]; in {
				cand.count, cand.inTrain = n, true
			}
			byCluster[cid] = cand
			cands = append(cands, cand)
		}
		cand.oovs++
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].count < cands[j].count })

	limit := len(cands) / divisor
	var chosen []string
	gained := 0
	for _, cand := range cands {
		if gained >= need || !cand.inTrain {
			break
		}
		if len(chosen) == limit {
			return nil, errors.Wrapf(ErrNotEnoughOOV,
				"need %d more test utterances, removing more than %d of %d OOV clusters", need, limit, len(cands))
		}
		chosen = append(chosen, cand.cluster)
		gained += cand.oovs
	}
	if gained < need {
		return nil, errors.Wrapf(ErrNotEnoughOOV,
			"need %d more test utterances, only %d available from %d OOV clusters", need, gained, len(cands))
	}
	return chosen, nil
}
