package core

import (
	"testing"

	"github.com/burrowhq/burrow/internal/models"
)

func TestTransition(t *testing.T) {
	up := &models.Vote{Direction: models.VoteUp}
	down := &models.Vote{Direction: models.VoteDown}

	tests := []struct {
		name      string
		existing  *models.Vote
		direction models.VoteDirection
		want      voteTransition
	}{
		{"no vote adds", nil, models.VoteUp, voteAdd},
		{"same direction retracts", up, models.VoteUp, voteRetract},
		{"same direction retracts down", down, models.VoteDown, voteRetract},
		{"opposite direction moves", up, models.VoteDown, voteMove},
		{"opposite direction moves up", down, models.VoteUp, voteMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transition(tt.existing, tt.direction); got != tt.want {
				t.Errorf("transition() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Casting the same vote twice must leave the counters where they started.
func TestToggleRoundTrips(t *testing.T) {
	addUp, addDown := voteDeltas(voteAdd, models.VoteUp)
	retractUp, retractDown := voteDeltas(voteRetract, models.VoteUp)
	if addUp+retractUp != 0 || addDown+retractDown != 0 {
		t.Errorf("add then retract must cancel: add=(%d,%d) retract=(%d,%d)",
			addUp, addDown, retractUp, retractDown)
	}
}

func TestVoteDeltas(t *testing.T) {
	tests := []struct {
		name       string
		transition voteTransition
		direction  models.VoteDirection
		wantUp     int64
		wantDown   int64
	}{
		{"add up", voteAdd, models.VoteUp, 1, 0},
		{"add down", voteAdd, models.VoteDown, 0, 1},
		{"retract up", voteRetract, models.VoteUp, -1, 0},
		{"retract down", voteRetract, models.VoteDown, 0, -1},
		{"move to up", voteMove, models.VoteUp, 1, -1},
		{"move to down", voteMove, models.VoteDown, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := voteDeltas(tt.transition, tt.direction)
			if up != tt.wantUp || down != tt.wantDown {
				t.Errorf("voteDeltas() = (%d, %d), want (%d, %d)", up, down, tt.wantUp, tt.wantDown)
			}
			// The score alone changes by up-down, preserving
			// score == upvotes - downvotes.
			if scoreDelta := up - down; scoreDelta < -2 || scoreDelta > 2 {
				t.Errorf("score delta out of range: %d", scoreDelta)
			}
		})
	}
}

func TestTransitionString(t *testing.T) {
	if voteAdd.String() != "added" || voteRetract.String() != "retracted" || voteMove.String() != "moved" {
		t.Error("unexpected transition names")
	}
}
