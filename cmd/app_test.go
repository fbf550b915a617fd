package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3raffle/internal/contract"
	"github.com/Mohsinsiddi/w3raffle/internal/rpc"
	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
	"github.com/Mohsinsiddi/w3raffle/internal/wallet"
)

func TestErrorLineHints(t *testing.T) {
	tests := []struct {
		err  error
		hint string
	}{
		{wallet.ErrProviderNotFound, "wallet import"},
		{wallet.ErrNoAccounts, "wallet import"},
		{contract.ErrNoSignerAvailable, "wallet connect"},
		{wallet.ErrNoAccountSelected, "wallet connect"},
		{fmt.Errorf("buy: %w", contract.ErrContractUnavailable), "config set-contract"},
		{txstatus.ErrReverted, "rejected"},
		{rpc.ErrNoHealthyRPC, "config set-rpc"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			line := errorLine(tt.err)
			assert.Contains(t, line, tt.err.Error())
			assert.Contains(t, line, tt.hint)
		})
	}
}

func TestErrorLineWithoutHint(t *testing.T) {
	line := errorLine(errors.New("boom"))
	assert.Contains(t, line, "boom")
	assert.NotContains(t, line, "\n")
}

func TestFindAccount(t *testing.T) {
	alice := wallet.Account{Address: common.HexToAddress("0x1111111111111111111111111111111111111111"), Name: "alice"}
	bob := wallet.Account{Address: common.HexToAddress("0x2222222222222222222222222222222222222222")}
	accounts := []wallet.Account{alice, bob}

	got, err := findAccount(accounts, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.Address, got.Address)

	got, err = findAccount(accounts, "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Equal(t, bob.Address, got.Address)

	_, err = findAccount(accounts, "carol")
	assert.ErrorIs(t, err, wallet.ErrInvalidAccount)

	_, err = findAccount(accounts, "0x3333333333333333333333333333333333333333")
	assert.ErrorIs(t, err, wallet.ErrInvalidAccount)
}

func TestParseRaffleID(t *testing.T) {
	id, err := parseRaffleID("42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"", "-1", "1.5", "abc"} {
		_, err := parseRaffleID(bad)
		assert.Error(t, err, bad)
	}
}
