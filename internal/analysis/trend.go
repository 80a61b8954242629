package analysis

import "math"

// TrendDirection describes whether a score series is heating up or cooling.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendPrediction is the outcome of a linear fit over a hot-score history.
type TrendPrediction struct {
	Direction  TrendDirection `json:"direction"`
	Confidence float64        `json:"confidence"` // 0-1
	Slope      float64        `json:"slope"`
}

// PredictTrend fits a least-squares line through the given hot-score history
// (oldest first). Fewer than three points returns a stable prediction at 0.5
// confidence. A slope above 2 is rising, below -2 declining.
func PredictTrend(history []int) TrendPrediction {
	if len(history) < 3 {
		return TrendPrediction{Direction: TrendStable, Confidence: 0.5}
	}

	n := float64(len(history))
	var sumX, sumY, sumXY, sumXX float64
	for i, score := range history {
		x, y := float64(i), float64(score)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)

	direction := TrendStable
	switch {
	case slope > 2:
		direction = TrendRising
	case slope < -2:
		direction = TrendDeclining
	}

	return TrendPrediction{
		Direction:  direction,
		Confidence: math.Min(1, math.Abs(slope)/10),
		Slope:      slope,
	}
}
