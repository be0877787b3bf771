package repositories

import (
	"direct-chat/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlacklistRepository_BanWord(t *testing.T) {
	req := require.New(t)
	repository := NewBlacklistRepository(openTestDB(t))

	// Given words banned in any case, one of them twice
	req.NoError(repository.BanWord("Snake"))
	req.NoError(repository.BanWord(" badger "))
	req.NoError(repository.BanWord("snake"))

	// Then each word is stored once, lower-cased
	words, err := repository.Words()
	req.NoError(err)
	req.Equal([]string{"badger", "snake"}, words)
}

func TestBlacklistRepository_Empty_Word(t *testing.T) {
	req := require.New(t)
	repository := NewBlacklistRepository(openTestDB(t))

	req.ErrorIs(repository.BanWord("  "), errors.ErrValidation)

	words, err := repository.Words()
	req.NoError(err)
	req.Empty(words)
}
