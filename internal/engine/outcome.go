package engine

type Outcome string

const (
	OutcomeWin         Outcome = "win"
	OutcomeLoss        Outcome = "loss"
	OutcomeDraw        Outcome = "draw"
	OutcomeForfeitWin  Outcome = "forfeit_win"
	OutcomeForfeitLoss Outcome = "forfeit_loss"
)

// Classify resolves the terminal result relative to the local player.
// A disconnect trumps everything else: the player who dropped loses.
func Classify(r Result, localPlayerID int) Outcome {
	if r.DisconnectedPlayerID != nil {
		if *r.DisconnectedPlayerID == localPlayerID {
			return OutcomeForfeitLoss
		}
		return OutcomeForfeitWin
	}
	if r.WinnerID == nil {
		return OutcomeDraw
	}
	if *r.WinnerID == localPlayerID {
		return OutcomeWin
	}
	return OutcomeLoss
}

// RatingDelta extracts the local player's rating change; zero when the
// server reported none.
func RatingDelta(r Result, localPlayerID int) int {
	if r.RatingChanges == nil {
		return 0
	}
	return r.RatingChanges[localPlayerID]
}

// Won reports whether the outcome counts as a victory.
func (o Outcome) Won() bool {
	return o == OutcomeWin || o == OutcomeForfeitWin
}
