/*
outcome.go - Pure mapping from RNG draws to reward/penalty outcomes

PURPOSE:
  One classification draw decides WHAT happened (bonus, mystery bonus,
  near-miss, nothing); one magnitude draw decides HOW MUCH, inside a
  type-specific range. Missed days use a single magnitude draw. The
  probabilities and ranges are fixed constants - they are the product's
  economy, not user configuration.

PROBABILITY TABLE (qualifying completed session):
  bonus      25%   +5..+15 minutes
  mystery    10%  +10..+30 minutes
  near-miss  15%    0 minutes, flagged for encouraging UI framing
  nothing    50%   (implicit remainder)

MISSED REQUIRED DAY:
  penalty   100%  -10..-30 minutes (never zero)

TRANSPARENCY:
  ExpectedMinutesPerSession and BreakEvenCompletionRate expose the
  economy's arithmetic so the UI (and the tests) can show users exactly
  what they are staking.

SEE ALSO:
  - rng.go: The draws consumed here
  - engine.go / sweep.go: Callers
*/
package commitment

// Outcome probability bands. Must sum to <= 1; the remainder is the
// implicit "nothing" outcome.
const (
	BonusProbability    = 0.25
	MysteryProbability  = 0.10
	NearMissProbability = 0.15
)

// Magnitude ranges, in whole minutes.
const (
	BonusMinMinutes   = 5
	BonusMaxMinutes   = 15
	MysteryMinMinutes = 10
	MysteryMaxMinutes = 30
	PenaltyMinMinutes = 10
	PenaltyMaxMinutes = 30
)

// Outcome is one classified roll of the reward stream.
type Outcome struct {
	Type          AdjustmentType
	MinutesChange int
	WasNearMiss   bool
}

// RollCompletion classifies a qualifying completed session. Consumes two
// draws (classification + magnitude); the magnitude draw is consumed even
// for zero-magnitude outcomes so the cursor advances by a fixed stride.
func RollCompletion(seq Sequencer) (Outcome, Sequencer) {
	class, seq := seq.Float64()
	magnitude, seq := seq.Float64()

	switch {
	case class < BonusProbability:
		return Outcome{
			Type:          AdjustBonus,
			MinutesChange: scaleToRange(magnitude, BonusMinMinutes, BonusMaxMinutes),
		}, seq
	case class < BonusProbability+MysteryProbability:
		return Outcome{
			Type:          AdjustMystery,
			MinutesChange: scaleToRange(magnitude, MysteryMinMinutes, MysteryMaxMinutes),
		}, seq
	case class < BonusProbability+MysteryProbability+NearMissProbability:
		return Outcome{Type: AdjustNone, WasNearMiss: true}, seq
	default:
		return Outcome{Type: AdjustNone}, seq
	}
}

// RollPenalty selects the magnitude for a missed required day. Consumes
// one draw. Penalties are never zero.
func RollPenalty(seq Sequencer) (Outcome, Sequencer) {
	magnitude, seq := seq.Float64()
	return Outcome{
		Type:          AdjustPenalty,
		MinutesChange: -scaleToRange(magnitude, PenaltyMinMinutes, PenaltyMaxMinutes),
	}, seq
}

func scaleToRange(v float64, min, max int) int {
	return min + int(v*float64(max-min+1))
}

// =============================================================================
// ECONOMY TRANSPARENCY
// =============================================================================

// ExpectedMinutesPerSession is the expected value of one qualifying
// completed session: sum of probability x mean magnitude over all bands.
func ExpectedMinutesPerSession() float64 {
	bonusMean := float64(BonusMinMinutes+BonusMaxMinutes) / 2
	mysteryMean := float64(MysteryMinMinutes+MysteryMaxMinutes) / 2
	return BonusProbability*bonusMean + MysteryProbability*mysteryMean
}

// ExpectedPenaltyMinutes is the expected magnitude of one missed day.
func ExpectedPenaltyMinutes() float64 {
	return float64(PenaltyMinMinutes+PenaltyMaxMinutes) / 2
}

// BreakEvenCompletionRate is the completion rate at which expected
// bonuses exactly offset expected penalties:
// penalty / (penalty + expected bonus).
func BreakEvenCompletionRate() float64 {
	penalty := ExpectedPenaltyMinutes()
	return penalty / (penalty + ExpectedMinutesPerSession())
}
