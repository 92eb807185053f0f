package metrics

import "math"

// WelfordState holds running statistics using Welford's online algorithm.
// Mean and standard deviation are updated in O(1) per observation, so a
// column can be summarized while rows stream out of the database.
type WelfordState struct {
	Count int64   // n - number of observations
	Mean  float64 // running mean
	M2    float64 // sum of squared differences from mean (for variance)
	Sum   float64
	Min   float64
	Max   float64
}

// Update adds a new observation.
// Reference: https://en.wikipedia.org/wiki/Algorithms_for_calculating_variance#Welford's_online_algorithm
func (w *WelfordState) Update(newValue float64) {
	w.Count++
	if w.Count == 1 {
		w.Min, w.Max = newValue, newValue
	} else {
		w.Min = math.Min(w.Min, newValue)
		w.Max = math.Max(w.Max, newValue)
	}
	w.Sum += newValue
	delta := newValue - w.Mean
	w.Mean += delta / float64(w.Count)
	delta2 := newValue - w.Mean
	w.M2 += delta * delta2
}

// Merge folds another state into w (Chan et al. parallel variant)
func (w *WelfordState) Merge(other WelfordState) {
	if other.Count == 0 {
		return
	}
	if w.Count == 0 {
		*w = other
		return
	}
	n := w.Count + other.Count
	delta := other.Mean - w.Mean
	w.M2 += other.M2 + delta*delta*float64(w.Count)*float64(other.Count)/float64(n)
	w.Mean += delta * float64(other.Count) / float64(n)
	w.Sum += other.Sum
	w.Min = math.Min(w.Min, other.Min)
	w.Max = math.Max(w.Max, other.Max)
	w.Count = n
}

// GetStdDev returns the population standard deviation.
// Returns 0 if fewer than 2 observations.
func (w *WelfordState) GetStdDev() float64 {
	if w.Count < 2 {
		return 0
	}
	return math.Sqrt(w.M2 / float64(w.Count))
}
