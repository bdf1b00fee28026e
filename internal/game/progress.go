package game

import (
	"time"

	"github.com/velotype/go-socket-typerace/internal/constants"
)

// WPM derives words per minute from correctly typed characters over the
// elapsed race time. The second return is false when elapsed is not yet
// strictly positive, in which case the caller keeps the previous value.
func WPM(correctChars int, elapsed time.Duration) (float64, bool) {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0, false
	}
	return (float64(correctChars) / constants.CharsPerWord) / minutes, true
}

// Accuracy derives the hit percentage from correct and error counters.
// The second return is false when nothing has been typed yet.
func Accuracy(correctChars, errorChars int) (float64, bool) {
	total := correctChars + errorChars
	if total <= 0 {
		return 0, false
	}
	acc := 100 - (float64(errorChars)/float64(total))*100
	return ClampPercent(acc), true
}

// ClampPercent bounds a value to [0,100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
