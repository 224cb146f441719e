package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRankValidValues(t *testing.T) {
	assert.Equal(t, RankInvited, ParseRank(0))
	assert.Equal(t, RankMember, ParseRank(1))
	assert.Equal(t, RankModerator, ParseRank(2))
	assert.Equal(t, RankAdmin, ParseRank(3))
}

func TestParseRankOutOfRangeClampsToMember(t *testing.T) {
	assert.Equal(t, RankMember, ParseRank(255))
	assert.Equal(t, RankMember, ParseRank(4))
}

func TestRankOrdering(t *testing.T) {
	assert.Less(t, RankInvited, RankMember)
	assert.Less(t, RankMember, RankModerator)
	assert.Less(t, RankModerator, RankAdmin)
}

func TestRankString(t *testing.T) {
	tests := map[Rank]string{
		RankInvited:   "invited",
		RankMember:    "member",
		RankModerator: "moderator",
		RankAdmin:     "admin",
		Rank(99):      "unknown",
	}
	for rank, want := range tests {
		assert.Equal(t, want, rank.String())
	}
}
