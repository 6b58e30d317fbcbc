package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vietddude/sfclient/internal/api"
	"github.com/vietddude/sfclient/internal/core/domain"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage tenant accounts",
}

var (
	accountStart           int64
	accountLimit           int64
	accountInitiatorSecret string
	accountTargetSecret    string
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE:  withSession(runAccountList),
	}
	listCmd.Flags().Int64Var(&accountStart, "start", 0, "first account ID to return")
	listCmd.Flags().Int64Var(&accountLimit, "limit", 0, "maximum number of accounts (0 = all)")

	showCmd := &cobra.Command{
		Use:   "show <account-id|username>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runAccountShow),
	}

	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account; CHAP secrets are generated unless given",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runAccountCreate),
	}
	createCmd.Flags().StringVar(&accountInitiatorSecret, "initiator-secret", "", "CHAP initiator secret")
	createCmd.Flags().StringVar(&accountTargetSecret, "target-secret", "", "CHAP target secret")

	deleteCmd := &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Remove an account",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runAccountDelete),
	}

	accountCmd.AddCommand(listCmd, showCmd, createCmd, deleteCmd)
	rootCmd.AddCommand(accountCmd)
}

func runAccountList(ctx context.Context, s *session, args []string) error {
	accounts, err := s.api.Accounts.List(ctx, accountStart, accountLimit)
	if err != nil {
		return err
	}
	return s.render(accounts, "ID\tUSERNAME\tSTATUS\tVOLUMES", func(w io.Writer) {
		for _, a := range accounts {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", a.AccountID, a.Username, a.Status, len(a.Volumes))
		}
	})
}

func runAccountShow(ctx context.Context, s *session, args []string) error {
	var (
		acct *domain.Account
		err  error
	)
	if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil {
		acct, err = s.api.Accounts.Get(ctx, id)
	} else {
		acct, err = s.api.Accounts.GetByName(ctx, args[0])
	}
	if err != nil {
		return err
	}
	return s.showAccount(acct)
}

func runAccountCreate(ctx context.Context, s *session, args []string) error {
	acct, err := s.api.Accounts.Add(ctx, api.AddAccountRequest{
		Username:        args[0],
		InitiatorSecret: accountInitiatorSecret,
		TargetSecret:    accountTargetSecret,
	})
	if err != nil {
		return err
	}
	return s.showAccount(acct)
}

func runAccountDelete(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0], "account ID")
	if err != nil {
		return err
	}
	if err := s.api.Accounts.Remove(ctx, id); err != nil {
		return err
	}
	return s.done("Account %d removed", id)
}

func (s *session) showAccount(a *domain.Account) error {
	return s.render(a, "FIELD\tVALUE", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "ID\t%d\n", a.AccountID)
		_, _ = fmt.Fprintf(w, "Username\t%s\n", a.Username)
		_, _ = fmt.Fprintf(w, "Status\t%s\n", orDash(string(a.Status)))
		_, _ = fmt.Fprintf(w, "Volumes\t%s\n", orDash(joinIDs(a.Volumes)))
		_, _ = fmt.Fprintf(w, "Initiator secret\t%s\n", orDash(a.InitiatorSecret))
		_, _ = fmt.Fprintf(w, "Target secret\t%s\n", orDash(a.TargetSecret))
	})
}
