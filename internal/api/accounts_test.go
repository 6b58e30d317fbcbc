package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

func TestAccounts_ListSorted(t *testing.T) {
	fake := newFakeCluster().on("ListAccounts",
		ok(`{"accounts":[{"accountID":3,"username":"c"},{"accountID":1,"username":"a","status":"active"}]}`))
	svc := newTestService(t, fake)

	accounts, err := svc.Accounts.List(context.Background(), 0, 0)

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(1), accounts[0].AccountID)
	assert.Equal(t, domain.AccountStatusActive, accounts[0].Status)
	assert.Equal(t, int64(3), accounts[1].AccountID)
	assert.Empty(t, fake.callsTo("ListAccounts")[0].Params, "zero paging arguments are omitted")
}

func TestAccounts_ListEmpty(t *testing.T) {
	svc := newTestService(t, newFakeCluster().on("ListAccounts", ok(`{"accounts":[]}`)))

	accounts, err := svc.Accounts.List(context.Background(), 5, 10)

	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}

func TestAccounts_ListMissingMember(t *testing.T) {
	svc := newTestService(t, newFakeCluster().on("ListAccounts", ok(`{}`)))

	_, err := svc.Accounts.List(context.Background(), 0, 0)

	var protoErr *rpc.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestAccounts_GetByNameNotFound(t *testing.T) {
	svc := newTestService(t, newFakeCluster().on("GetAccountByName", apiErr("xUnknownAccount")))

	_, err := svc.Accounts.GetByName(context.Background(), "ghost")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, rpc.IsAPIError(err, "xUnknownAccount"), "original API error stays in the chain")
}

func TestAccounts_AddRetriesRejectedCallThenReReads(t *testing.T) {
	fake := newFakeCluster().
		on("AddAccount",
			apiErr("xDBVersionMismatch"),
			apiErr("xDBVersionMismatch"),
			apiErr("xDBVersionMismatch"),
			ok(`{"accountID":42}`)).
		on("GetAccountByID", ok(`{"account":{"accountID":42,"username":"jdg","status":"active"}}`))
	svc := newTestService(t, fake)

	acct, err := svc.Accounts.Add(context.Background(), AddAccountRequest{Username: "jdg"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), acct.AccountID)
	assert.Equal(t, "jdg", acct.Username)

	adds := fake.callsTo("AddAccount")
	require.Len(t, adds, 4)
	secret, _ := adds[0].Params["initiatorSecret"].(string)
	assert.Len(t, secret, 12)
	assert.Equal(t, secret, adds[3].Params["initiatorSecret"], "retries resend the same params")
	assert.Equal(t, int64(42), fake.callsTo("GetAccountByID")[0].Params["accountID"])
}

func TestAccounts_AddNotRepeatedAfterTransportError(t *testing.T) {
	fake := newFakeCluster().on("AddAccount", transportFailure(), ok(`{"accountID":1}`))
	svc := newTestService(t, fake)

	_, err := svc.Accounts.Add(context.Background(), AddAccountRequest{Username: "jdg"})

	var transportErr *rpc.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Len(t, fake.callsTo("AddAccount"), 1)
}

func TestAccounts_AddKeepsSuppliedSecrets(t *testing.T) {
	fake := newFakeCluster().
		on("AddAccount", ok(`{"accountID":7}`)).
		on("GetAccountByID", ok(`{"account":{"accountID":7}}`))
	svc := newTestService(t, fake)

	_, err := svc.Accounts.Add(context.Background(), AddAccountRequest{
		Username:        "jdg",
		InitiatorSecret: "initiator-123",
		TargetSecret:    "target-4567",
		Attributes:      map[string]any{"owner": "ops"},
	})

	require.NoError(t, err)
	params := fake.callsTo("AddAccount")[0].Params
	assert.Equal(t, "initiator-123", params["initiatorSecret"])
	assert.Equal(t, "target-4567", params["targetSecret"])
	assert.Equal(t, map[string]any{"owner": "ops"}, params["attributes"])
}

func TestAccounts_AddRequiresUsername(t *testing.T) {
	fake := newFakeCluster()
	svc := newTestService(t, fake)

	_, err := svc.Accounts.Add(context.Background(), AddAccountRequest{})

	assert.Error(t, err)
	assert.Empty(t, fake.callsTo("AddAccount"))
}

func TestAccounts_ModifyAndRemove(t *testing.T) {
	fake := newFakeCluster().
		on("ModifyAccount", ok(`{}`)).
		on("RemoveAccount", apiErr("xAccountHasVolumes"))
	svc := newTestService(t, fake)

	require.NoError(t, svc.Accounts.Modify(context.Background(), ModifyAccountRequest{
		AccountID: 5,
		Status:    domain.AccountStatusLocked,
	}))
	params := fake.callsTo("ModifyAccount")[0].Params
	assert.Equal(t, int64(5), params["accountID"])
	assert.Equal(t, domain.AccountStatusLocked, params["status"])
	assert.NotContains(t, params, "initiatorSecret")

	err := svc.Accounts.Remove(context.Background(), 5)
	assert.True(t, rpc.IsAPIError(err, "xAccountHasVolumes"))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Len(t, fake.callsTo("RemoveAccount"), 1, "client errors are not retried")
}

func TestGenerateCHAPSecret(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		s := GenerateCHAPSecret()
		require.Len(t, s, 12)
		for _, r := range s {
			assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'), "unexpected rune %q", r)
		}
		seen[s] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}
