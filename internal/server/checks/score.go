package checks

import "token-guard/internal/server/model"

const (
	passPoints = 20
	warnPoints = 10

	safeThreshold    = 80
	cautionThreshold = 50
)

// Score pass 20 / warn 10 / fail 0，结果限制在 0..100
func Score(results ...model.CheckResult) model.Score {
	value := 0
	for _, r := range results {
		switch r.Status {
		case model.StatusPass:
			value += passPoints
		case model.StatusWarn:
			value += warnPoints
		}
	}
	value = min(max(value, 0), 100)

	rating := model.RatingRisky
	switch {
	case value >= safeThreshold:
		rating = model.RatingSafe
	case value >= cautionThreshold:
		rating = model.RatingCaution
	}
	return model.Score{Value: value, Rating: rating}
}
