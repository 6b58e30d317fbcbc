package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vietddude/sfclient/internal/api"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage volume snapshots",
}

var (
	snapshotVolume      int64
	snapshotName        string
	snapshotSaveCurrent bool
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Args:  cobra.NoArgs,
		RunE:  withSession(runSnapshotList),
	}
	listCmd.Flags().Int64Var(&snapshotVolume, "volume", 0, "only snapshots of this volume ID")

	createCmd := &cobra.Command{
		Use:   "create <volume-id>",
		Short: "Snapshot a volume",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runSnapshotCreate),
	}
	createCmd.Flags().StringVar(&snapshotName, "name", "", "snapshot name")

	deleteCmd := &cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runSnapshotDelete),
	}

	rollbackCmd := &cobra.Command{
		Use:   "rollback <volume-id> <snapshot-id>",
		Short: "Roll a volume back to a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE:  withSession(runSnapshotRollback),
	}
	rollbackCmd.Flags().BoolVar(&snapshotSaveCurrent, "save-current", false, "snapshot the current state first")

	snapshotCmd.AddCommand(listCmd, createCmd, deleteCmd, rollbackCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotList(ctx context.Context, s *session, args []string) error {
	snaps, err := s.api.Snapshots.List(ctx, snapshotVolume)
	if err != nil {
		return err
	}
	return s.render(snaps, "ID\tVOLUME\tNAME\tSTATUS\tCREATED", func(w io.Writer) {
		for _, sn := range snaps {
			_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", sn.SnapshotID, sn.VolumeID, orDash(sn.Name), orDash(sn.Status), orDash(sn.CreateTime))
		}
	})
}

func runSnapshotCreate(ctx context.Context, s *session, args []string) error {
	volumeID, err := parseID(args[0], "volume ID")
	if err != nil {
		return err
	}
	snap, err := s.api.Snapshots.Create(ctx, api.CreateSnapshotRequest{VolumeID: volumeID, Name: snapshotName})
	if err != nil {
		return err
	}
	return s.render(snap, "ID\tVOLUME\tNAME", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", snap.SnapshotID, snap.VolumeID, orDash(snap.Name))
	})
}

func runSnapshotDelete(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0], "snapshot ID")
	if err != nil {
		return err
	}
	if err := s.api.Snapshots.Delete(ctx, id); err != nil {
		return err
	}
	return s.done("Snapshot %d deleted", id)
}

func runSnapshotRollback(ctx context.Context, s *session, args []string) error {
	volumeID, err := parseID(args[0], "volume ID")
	if err != nil {
		return err
	}
	snapshotID, err := parseID(args[1], "snapshot ID")
	if err != nil {
		return err
	}
	if err := s.api.Snapshots.Rollback(ctx, volumeID, snapshotID, snapshotSaveCurrent); err != nil {
		return err
	}
	return s.done("Volume %d rolled back to snapshot %d", volumeID, snapshotID)
}
