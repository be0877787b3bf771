package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPair_Is_Unordered(t *testing.T) {
	req := require.New(t)
	req.Equal(NewPair(1, 2), NewPair(2, 1))
	req.Equal(Pair{Low: 3, High: 7}, NewPair(7, 3))
}

func TestChat_Participants(t *testing.T) {
	req := require.New(t)
	chat := Chat{ID: 1, UserOne: 10, UserTwo: 20}

	req.True(chat.HasParticipant(10))
	req.True(chat.HasParticipant(20))
	req.False(chat.HasParticipant(30))

	req.Equal(UserID(20), chat.PartnerOf(10))
	req.Equal(UserID(10), chat.PartnerOf(20))
}
