package product

// Rating is one user's rating of a product, on a 1..5 scale.
type Rating struct {
	UserID string
	Value  int
}

// AvgRating returns the arithmetic mean of the ratings, or 0 when there are
// none.
func AvgRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings))
}
