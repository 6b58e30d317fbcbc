package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vietddude/sfclient/internal/api"
	"github.com/vietddude/sfclient/internal/core/domain"
)

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Manage block volumes",
}

var (
	volumeAccount       int64
	volumeDeleted       bool
	volumeWithSnapshots bool
	volumeSizeGiB       int64
	volume512e          bool
	volumeMinIOPS       int64
	volumeMaxIOPS       int64
	volumeBurstIOPS     int64
	volumePurge         bool
	volumeCloneAccount  int64
	volumeCloneSnapshot int64
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List volumes",
		Args:  cobra.NoArgs,
		RunE:  withSession(runVolumeList),
	}
	listCmd.Flags().Int64Var(&volumeAccount, "account", 0, "only volumes owned by this account ID")
	listCmd.Flags().BoolVar(&volumeDeleted, "deleted", false, "list deleted volumes awaiting purge")
	listCmd.Flags().BoolVar(&volumeWithSnapshots, "with-snapshots", false, "include snapshot IDs")

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a volume",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runVolumeCreate),
	}
	createCmd.Flags().Int64Var(&volumeAccount, "account", 0, "owning account ID (required)")
	createCmd.Flags().Int64Var(&volumeSizeGiB, "size-gib", 0, "size in GiB (required)")
	createCmd.Flags().BoolVar(&volume512e, "enable512e", false, "emulate 512 byte sectors")
	createCmd.Flags().Int64Var(&volumeMinIOPS, "min-iops", 0, "QoS minimum IOPS")
	createCmd.Flags().Int64Var(&volumeMaxIOPS, "max-iops", 0, "QoS maximum IOPS")
	createCmd.Flags().Int64Var(&volumeBurstIOPS, "burst-iops", 0, "QoS burst IOPS")
	_ = createCmd.MarkFlagRequired("account")
	_ = createCmd.MarkFlagRequired("size-gib")

	deleteCmd := &cobra.Command{
		Use:   "delete <volume-id>",
		Short: "Delete a volume",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(runVolumeDelete),
	}
	deleteCmd.Flags().BoolVar(&volumePurge, "purge", false, "purge immediately after deleting")

	cloneCmd := &cobra.Command{
		Use:   "clone <volume-id> <name>",
		Short: "Clone a volume",
		Args:  cobra.ExactArgs(2),
		RunE:  withSession(runVolumeClone),
	}
	cloneCmd.Flags().Int64Var(&volumeCloneAccount, "account", 0, "account ID for the clone")
	cloneCmd.Flags().Int64Var(&volumeCloneSnapshot, "snapshot", 0, "clone from this snapshot ID")

	purgeCmd := &cobra.Command{
		Use:   "purge <volume-id>",
		Short: "Purge a deleted volume",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, s *session, args []string) error {
			return volumeByID(ctx, s, args[0], "purged", s.api.Volumes.Purge)
		}),
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <volume-id>",
		Short: "Restore a deleted volume",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, s *session, args []string) error {
			return volumeByID(ctx, s, args[0], "restored", s.api.Volumes.Restore)
		}),
	}

	volumeCmd.AddCommand(listCmd, createCmd, deleteCmd, cloneCmd, purgeCmd, restoreCmd)
	rootCmd.AddCommand(volumeCmd)
}

func runVolumeList(ctx context.Context, s *session, args []string) error {
	var (
		vols []domain.Volume
		err  error
	)
	switch {
	case volumeDeleted:
		vols, err = s.api.Volumes.ListDeleted(ctx)
	case volumeAccount > 0:
		vols, err = s.api.Volumes.ListForAccount(ctx, volumeAccount)
	case volumeWithSnapshots:
		vols, err = s.api.Volumes.ListWithSnapshots(ctx)
	default:
		vols, err = s.api.Volumes.ListActive(ctx, 0, 0)
	}
	if err != nil {
		return err
	}

	header := "ID\tNAME\tACCOUNT\tSIZE(GiB)\tACCESS\tSTATUS"
	if volumeWithSnapshots {
		header += "\tSNAPSHOTS"
	}
	return s.render(vols, header, func(w io.Writer) {
		for _, v := range vols {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\t%s", v.VolumeID, v.Name, v.AccountID, v.SizeGiB(), orDash(string(v.Access)), orDash(v.Status))
			if volumeWithSnapshots {
				_, _ = fmt.Fprintf(w, "\t%s", orDash(joinIDs(v.SnapshotIDs)))
			}
			_, _ = fmt.Fprintln(w)
		}
	})
}

func runVolumeCreate(ctx context.Context, s *session, args []string) error {
	req := api.CreateVolumeRequest{
		Name:       args[0],
		AccountID:  volumeAccount,
		TotalSize:  volumeSizeGiB * domain.GiB,
		Enable512e: volume512e,
	}
	if volumeMinIOPS > 0 || volumeMaxIOPS > 0 || volumeBurstIOPS > 0 {
		req.QoS = &domain.QoS{MinIOPS: volumeMinIOPS, MaxIOPS: volumeMaxIOPS, BurstIOPS: volumeBurstIOPS}
	}
	vol, err := s.api.Volumes.Create(ctx, req)
	if err != nil {
		return err
	}
	return s.render(vol, "ID\tNAME\tACCOUNT\tSIZE(GiB)\tIQN", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\n", vol.VolumeID, vol.Name, vol.AccountID, vol.SizeGiB(), orDash(vol.IQN))
	})
}

func runVolumeDelete(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0], "volume ID")
	if err != nil {
		return err
	}
	if err := s.api.Volumes.Delete(ctx, id); err != nil {
		return err
	}
	if volumePurge {
		if err := s.api.Volumes.Purge(ctx, id); err != nil {
			return err
		}
		return s.done("Volume %d deleted and purged", id)
	}
	return s.done("Volume %d deleted", id)
}

func runVolumeClone(ctx context.Context, s *session, args []string) error {
	id, err := parseID(args[0], "volume ID")
	if err != nil {
		return err
	}
	res, err := s.api.Volumes.Clone(ctx, api.CloneVolumeRequest{
		VolumeID:     id,
		Name:         args[1],
		NewAccountID: volumeCloneAccount,
		SnapshotID:   volumeCloneSnapshot,
	})
	if err != nil {
		return err
	}
	return s.render(res, "CLONE\tVOLUME\tASYNC HANDLE", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\n", res.CloneID, res.VolumeID, res.AsyncHandle)
	})
}

func volumeByID(ctx context.Context, s *session, arg, verb string, op func(context.Context, int64) error) error {
	id, err := parseID(arg, "volume ID")
	if err != nil {
		return err
	}
	if err := op(ctx, id); err != nil {
		return err
	}
	return s.done("Volume %d %s", id, verb)
}
