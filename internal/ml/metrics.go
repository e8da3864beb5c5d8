package ml

import (
	"fmt"
	"strings"
)

// Class display names in label order.
var classNames = [2]string{"Legitimate", "Phishing"}

// ClassMetrics holds precision/recall/F1 for a single class
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes the evaluation of predictions on a held-out set
type Report struct {
	Accuracy float64
	// Confusion is indexed [actual][predicted]
	Confusion [2][2]int
	PerClass  [2]ClassMetrics
	Support   int
}

// Evaluate compares predicted labels against actual labels
func Evaluate(actual, predicted []int) (*Report, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("actual count %d does not match predicted count %d", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return nil, fmt.Errorf("cannot evaluate an empty test set")
	}

	r := &Report{Support: len(actual)}
	correct := 0
	for i := range actual {
		if actual[i] < 0 || actual[i] > 1 || predicted[i] < 0 || predicted[i] > 1 {
			return nil, fmt.Errorf("labels must be 0 or 1")
		}
		r.Confusion[actual[i]][predicted[i]]++
		if actual[i] == predicted[i] {
			correct++
		}
	}
	r.Accuracy = float64(correct) / float64(len(actual))

	for c := 0; c < 2; c++ {
		tp := r.Confusion[c][c]
		fp := r.Confusion[1-c][c]
		fn := r.Confusion[c][1-c]

		m := ClassMetrics{Support: tp + fn}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.PerClass[c] = m
	}

	return r, nil
}

// String renders the report the way the trainer prints it
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Accuracy: %.4f\n\n", r.Accuracy)

	fmt.Fprintf(&b, "%-12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for c := 0; c < 2; c++ {
		m := r.PerClass[c]
		fmt.Fprintf(&b, "%-12s %10.2f %10.2f %10.2f %10d\n",
			classNames[c], m.Precision, m.Recall, m.F1, m.Support)
	}

	fmt.Fprintf(&b, "\nConfusion matrix (rows actual, columns predicted):\n")
	fmt.Fprintf(&b, "%-12s %12s %12s\n", "", classNames[0], classNames[1])
	for c := 0; c < 2; c++ {
		fmt.Fprintf(&b, "%-12s %12d %12d\n", classNames[c], r.Confusion[c][0], r.Confusion[c][1])
	}

	return b.String()
}
