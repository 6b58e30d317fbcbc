package api

import (
	"cmp"
	"context"
	"crypto/rand"
	"fmt"
	"slices"

	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

const chapSecretLength = 12

// Accounts manages tenant accounts.
type Accounts struct {
	caller Caller
}

// AddAccountRequest describes a new account. Empty secrets are generated.
type AddAccountRequest struct {
	Username        string
	InitiatorSecret string
	TargetSecret    string
	Attributes      map[string]any
}

// ModifyAccountRequest changes an existing account. Zero fields are left as is.
type ModifyAccountRequest struct {
	AccountID       int64
	Status          domain.AccountStatus
	InitiatorSecret string
	TargetSecret    string
	Attributes      map[string]any
}

// List returns accounts sorted by ID. A zero limit means no limit.
func (a *Accounts) List(ctx context.Context, startID, limit int64) ([]domain.Account, error) {
	params := map[string]any{}
	setIf(params, "startAccountID", startID)
	setIf(params, "limit", limit)

	accounts, err := callList[domain.Account](ctx, a.caller, "ListAccounts", params, "accounts")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(accounts, func(x, y domain.Account) int { return cmp.Compare(x.AccountID, y.AccountID) })
	return accounts, nil
}

// Get returns one account by ID.
func (a *Accounts) Get(ctx context.Context, id int64) (*domain.Account, error) {
	acct, err := callObject[domain.Account](ctx, a.caller, "GetAccountByID",
		map[string]any{"accountID": id}, "account")
	if err != nil {
		return nil, notFound(err, nameUnknownAccount, fmt.Sprintf("account %d", id))
	}
	return acct, nil
}

// GetByName returns the account with the given username.
func (a *Accounts) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	acct, err := callObject[domain.Account](ctx, a.caller, "GetAccountByName",
		map[string]any{"username": name}, "account")
	if err != nil {
		return nil, notFound(err, nameUnknownAccount, fmt.Sprintf("account %q", name))
	}
	return acct, nil
}

// Add creates an account and returns it as stored by the cluster.
func (a *Accounts) Add(ctx context.Context, req AddAccountRequest) (*domain.Account, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("add account: username is required")
	}
	params := map[string]any{
		"username":        req.Username,
		"initiatorSecret": secretOrRandom(req.InitiatorSecret),
		"targetSecret":    secretOrRandom(req.TargetSecret),
	}
	if len(req.Attributes) > 0 {
		params["attributes"] = req.Attributes
	}

	var created struct {
		AccountID int64 `json:"accountID"`
	}
	if err := a.caller.CallInto(ctx, "AddAccount", params, &created, rpc.NonIdempotent()); err != nil {
		return nil, err
	}
	return a.Get(ctx, created.AccountID)
}

// Modify updates an account.
func (a *Accounts) Modify(ctx context.Context, req ModifyAccountRequest) error {
	params := map[string]any{"accountID": req.AccountID}
	setIf(params, "status", req.Status)
	setIf(params, "initiatorSecret", req.InitiatorSecret)
	setIf(params, "targetSecret", req.TargetSecret)
	if req.Attributes != nil {
		params["attributes"] = req.Attributes
	}
	_, err := a.caller.Call(ctx, "ModifyAccount", params)
	return err
}

// Remove deletes an account. The cluster refuses while it still owns volumes.
func (a *Accounts) Remove(ctx context.Context, id int64) error {
	_, err := a.caller.Call(ctx, "RemoveAccount", map[string]any{"accountID": id})
	return notFound(err, nameUnknownAccount, fmt.Sprintf("account %d", id))
}

// GenerateCHAPSecret returns a random 12 character secret of upper case
// letters and digits.
func GenerateCHAPSecret() string {
	return rand.Text()[:chapSecretLength]
}

func secretOrRandom(s string) string {
	if s != "" {
		return s
	}
	return GenerateCHAPSecret()
}
