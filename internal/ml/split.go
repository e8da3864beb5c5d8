package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mikey/phish-detector/internal/core"
)

// StratifiedSplit shuffles and splits labeled samples into train and test
// sets, preserving the class balance in both. The split is deterministic for
// a fixed seed.
func StratifiedSplit(samples []core.LabeledSample, testRatio float64, seed int64) (train, test []core.LabeledSample, err error) {
	if testRatio < 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in [0,1), got %g", testRatio)
	}

	var byClass [2][]core.LabeledSample
	for _, s := range samples {
		if s.Label != 0 && s.Label != 1 {
			return nil, nil, fmt.Errorf("label must be 0 or 1, got %d", s.Label)
		}
		byClass[s.Label] = append(byClass[s.Label], s)
	}

	rng := rand.New(rand.NewSource(seed))
	for label := 0; label < 2; label++ {
		group := byClass[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		nTest := int(math.Round(testRatio * float64(len(group))))
		if testRatio > 0 && nTest == 0 && len(group) > 1 {
			nTest = 1
		}
		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}

	if len(train) == 0 {
		return nil, nil, fmt.Errorf("training split is empty")
	}
	return train, test, nil
}
