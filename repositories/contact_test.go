package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContactRepository_Edges_Are_Directional(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openTestDB(t))

	// Given Alice adds Bob
	_, err := repository.AddContact(1, 2, time.Now())
	req.NoError(err)

	// Then Alice has Bob but Bob doesn't have Alice
	found, err := repository.HasContact(1, 2)
	req.NoError(err)
	req.True(found)

	found, err = repository.HasContact(2, 1)
	req.NoError(err)
	req.False(found)

	contacts, err := repository.ListContacts(2)
	req.NoError(err)
	req.Empty(contacts)
}

func TestContactRepository_Duplicate_Edge(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openTestDB(t))

	_, err := repository.AddContact(1, 2, time.Now())
	req.NoError(err)

	_, err = repository.AddContact(1, 2, time.Now())
	req.ErrorIs(err, errors.ErrContactExists)

	// The reverse edge is a different pair
	_, err = repository.AddContact(2, 1, time.Now())
	req.NoError(err)
}

func TestContactRepository_List(t *testing.T) {
	req := require.New(t)
	repository := NewContactRepository(openTestDB(t))

	for _, contact := range []domain.UserID{3, 2, 11} {
		_, err := repository.AddContact(1, contact, time.Now())
		req.NoError(err)
	}
	_, err := repository.AddContact(2, 1, time.Now())
	req.NoError(err)

	contacts, err := repository.ListContacts(1)
	req.NoError(err)
	req.Len(contacts, 3)
	req.Equal(domain.UserID(2), contacts[0].ContactID)
	req.Equal(domain.UserID(3), contacts[1].ContactID)
	req.Equal(domain.UserID(11), contacts[2].ContactID)
}
