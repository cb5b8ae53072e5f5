package party_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigparty/gg18/pkg/party"
)

func TestSortedOrdersAscending(t *testing.T) {
	ids := []party.ID{"charlie", "alice", "bob"}
	sorted := party.Sorted(ids)
	assert.Equal(t, []party.ID{"alice", "bob", "charlie"}, sorted)
	// Sorted must not mutate its input.
	assert.Equal(t, []party.ID{"charlie", "alice", "bob"}, ids)
}

func TestIndexOfAndContains(t *testing.T) {
	ids := []party.ID{"alice", "bob", "charlie"}

	assert.Equal(t, 1, party.IndexOf(ids, "bob"))
	assert.Equal(t, -1, party.IndexOf(ids, "dave"))

	assert.True(t, party.Contains(ids, "charlie"))
	assert.False(t, party.Contains(ids, "dave"))
}
