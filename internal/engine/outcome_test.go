package engine

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		result  Result
		localID int
		want    Outcome
	}{
		{
			name:    "winner is local player",
			result:  Result{Scores: map[int]int{1: 3, 2: 2}, WinnerID: intp(1)},
			localID: 1,
			want:    OutcomeWin,
		},
		{
			name:    "winner is opponent",
			result:  Result{Scores: map[int]int{1: 3, 2: 2}, WinnerID: intp(1)},
			localID: 2,
			want:    OutcomeLoss,
		},
		{
			name:    "no winner means draw",
			result:  Result{Scores: map[int]int{1: 2, 2: 2}},
			localID: 1,
			want:    OutcomeDraw,
		},
		{
			name:    "opponent disconnected",
			result:  Result{DisconnectedPlayerID: intp(2)},
			localID: 1,
			want:    OutcomeForfeitWin,
		},
		{
			name:    "local player disconnected",
			result:  Result{DisconnectedPlayerID: intp(1)},
			localID: 1,
			want:    OutcomeForfeitLoss,
		},
		{
			name:    "disconnect trumps winner field",
			result:  Result{WinnerID: intp(1), DisconnectedPlayerID: intp(1)},
			localID: 1,
			want:    OutcomeForfeitLoss,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.result, tc.localID); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRatingDelta(t *testing.T) {
	r := Result{RatingChanges: map[int]int{1: 25, 2: -25}}
	if d := RatingDelta(r, 1); d != 25 {
		t.Fatalf("want +25, got %d", d)
	}
	if d := RatingDelta(r, 2); d != -25 {
		t.Fatalf("want -25, got %d", d)
	}
	if d := RatingDelta(Result{}, 1); d != 0 {
		t.Fatalf("want 0 without rating changes, got %d", d)
	}
}

func TestOutcomeWon(t *testing.T) {
	if !OutcomeWin.Won() || !OutcomeForfeitWin.Won() {
		t.Fatalf("wins should count as won")
	}
	if OutcomeLoss.Won() || OutcomeDraw.Won() || OutcomeForfeitLoss.Won() {
		t.Fatalf("non-wins should not count as won")
	}
}
