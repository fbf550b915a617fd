package txstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotsReplaceStopsOnlySameKind(t *testing.T) {
	s := NewSlots()
	create := NewPendingTransaction(Call{Function: "createRaffle"})
	buy1 := NewPendingTransaction(Call{Function: "buyTicket"})
	buy2 := NewPendingTransaction(Call{Function: "buyTicket"})

	s.Replace("create", create)
	assert.Nil(t, s.Replace("buy", buy1))
	assert.Same(t, buy1, s.Replace("buy", buy2))

	assert.True(t, buy1.Status().Detached)
	assert.False(t, buy2.Status().Detached)
	assert.False(t, create.Status().Detached)
	assert.True(t, create.Status().IsLoading)
	assert.Same(t, buy2, s.Get("buy"))
}

func TestSlotsReset(t *testing.T) {
	s := NewSlots()
	tx := NewPendingTransaction(Call{Function: "closeRaffle"})
	s.Replace("close", tx)
	s.Reset("close")

	assert.Nil(t, s.Get("close"))
	assert.True(t, tx.Status().Detached)
	assert.Empty(t, s.Kinds())
}
