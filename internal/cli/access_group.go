package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vietddude/sfclient/internal/api"
)

var accessGroupCmd = &cobra.Command{
	Use:     "access-group",
	Aliases: []string{"vag"},
	Short:   "Manage volume access groups",
}

var (
	accessGroupInitiators []string
	accessGroupVolumes    []int64
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List access groups",
		Args:  cobra.NoArgs,
		RunE:  withSession(runAccessGroupList),
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an access group",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runAccessGroupCreate),
	}
	createCmd.Flags().StringSliceVar(&accessGroupInitiators, "initiator", nil, "initiator IQN (repeatable)")
	createCmd.Flags().Int64SliceVar(&accessGroupVolumes, "volume", nil, "volume ID (repeatable)")

	deleteCmd := &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete an access group",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runAccessGroupDelete),
	}

	accessGroupCmd.AddCommand(listCmd, createCmd, deleteCmd)
	rootCmd.AddCommand(accessGroupCmd)
}

func runAccessGroupList(ctx context.Context, s *session, args []string) error {
	groups, err := s.api.AccessGroups.List(ctx, 0, 0)
	if err != nil {
		return err
	}
	return s.render(groups, "ID\tNAME\tINITIATORS\tVOLUMES", func(w io.Writer) {
		for _, g := range groups {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", g.VolumeAccessGroupID, g.Name, len(g.Initiators), orDash(joinIDs(g.Volumes)))
		}
	})
}

func runAccessGroupCreate(ctx context.Context, s *session, args []string) error {
	id, err := s.api.AccessGroups.Create(ctx, api.CreateAccessGroupRequest{
		Name:       args[0],
		Initiators: accessGroupInitiators,
		Volumes:    accessGroupVolumes,
	})
	if err != nil {
		return err
	}
	if s.raw {
		return writeJSON(s.out, map[string]int64{"volumeAccessGroupID": id})
	}
	return s.done("Access group %d created", id)
}

func runAccessGroupDelete(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0], "access group ID")
	if err != nil {
		return err
	}
	if err := s.api.AccessGroups.Delete(ctx, id); err != nil {
		return err
	}
	return s.done("Access group %d deleted", id)
}
