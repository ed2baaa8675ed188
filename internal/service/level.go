package service

// PointsPerLevel is the fixed level divisor: every 100 accumulated points is
// one level.
const PointsPerLevel = 100

// ComputeLevel maps a total point count to a level. Level 1 starts at 0
// points; exactly 100 points already counts as level 2. There is no upper
// bound. Always call this with the full recomputed total, never a delta.
func ComputeLevel(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/PointsPerLevel + 1
}

// PointsToNextLevel returns how many points are missing until the next level
// threshold.
func PointsToNextLevel(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return ComputeLevel(totalPoints)*PointsPerLevel - totalPoints
}
