// Package leaderboard recomputes dense ranks over user point balances and
// serves the ranked table.
package leaderboard

// UserPoints is a snapshot row. A nil balance ranks as zero.
type UserPoints struct {
	ID            uint
	PointsBalance *int64
}

// Ranked is one computed leaderboard position.
type Ranked struct {
	UserID uint
	Points int64
	Rank   int
}

// DenseRank assigns ranks to users already ordered by points descending.
// Equal points share a rank and the next distinct value gets rank+1.
func DenseRank(users []UserPoints) []Ranked {
	out := make([]Ranked, 0, len(users))

	var (
		previous *int64
		rank     int
	)
	for _, u := range users {
		points := effectivePoints(u.PointsBalance)
		if previous == nil || *previous != points {
			rank++
			p := points
			previous = &p
		}
		out = append(out, Ranked{UserID: u.ID, Points: points, Rank: rank})
	}
	return out
}

func effectivePoints(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
