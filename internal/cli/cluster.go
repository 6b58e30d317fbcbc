package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Show cluster state",
}

func init() {
	clusterCmd.AddCommand(
		&cobra.Command{Use: "info", Short: "Cluster identity and addresses", Args: cobra.NoArgs, RunE: withSession(runClusterInfo)},
		&cobra.Command{Use: "version", Short: "Cluster and node software versions", Args: cobra.NoArgs, RunE: withSession(runClusterVersion)},
		&cobra.Command{Use: "capacity", Short: "Space and IOPS usage", Args: cobra.NoArgs, RunE: withSession(runClusterCapacity)},
		&cobra.Command{Use: "nodes", Short: "List active nodes", Args: cobra.NoArgs, RunE: withSession(runClusterNodes)},
		&cobra.Command{Use: "drives", Short: "List drives", Args: cobra.NoArgs, RunE: withSession(runClusterDrives)},
	)
	rootCmd.AddCommand(clusterCmd)
}

func runClusterInfo(ctx context.Context, s *session, args []string) error {
	info, err := s.api.Cluster.Info(ctx)
	if err != nil {
		return err
	}
	return s.render(info, "FIELD\tVALUE", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Name\t%s\n", info.Name)
		_, _ = fmt.Fprintf(w, "UUID\t%s\n", orDash(info.UUID))
		_, _ = fmt.Fprintf(w, "MVIP\t%s\n", orDash(info.MVIP))
		_, _ = fmt.Fprintf(w, "SVIP\t%s\n", orDash(info.SVIP))
		_, _ = fmt.Fprintf(w, "Replicas\t%d\n", info.RepCount)
		_, _ = fmt.Fprintf(w, "Encryption at rest\t%s\n", orDash(info.EncryptAtRest))
	})
}

func runClusterVersion(ctx context.Context, s *session, args []string) error {
	v, err := s.api.Cluster.VersionInfo(ctx)
	if err != nil {
		return err
	}
	return s.render(v, "NODE\tVERSION\tREVISION", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "cluster\t%s\tapi %s\n", v.ClusterVersion, v.ClusterAPIVersion)
		for _, n := range v.Nodes {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", n.NodeID, n.NodeVersion, orDash(n.NodeInternalRevision))
		}
	})
}

func runClusterCapacity(ctx context.Context, s *session, args []string) error {
	c, err := s.api.Cluster.Capacity(ctx)
	if err != nil {
		return err
	}
	return s.render(c, "METRIC\tVALUE", func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Used space\t%d / %d\n", c.UsedSpace, c.MaxUsedSpace)
		_, _ = fmt.Fprintf(w, "Provisioned space\t%d / %d\n", c.ProvisionedSpace, c.MaxProvisionedSpace)
		_, _ = fmt.Fprintf(w, "IOPS\t%d / %d\n", c.CurrentIOPS, c.MaxIOPS)
		_, _ = fmt.Fprintf(w, "Active sessions\t%d\n", c.ActiveSessions)
	})
}

func runClusterNodes(ctx context.Context, s *session, args []string) error {
	nodes, err := s.api.Cluster.ListActiveNodes(ctx)
	if err != nil {
		return err
	}
	return s.render(nodes, "ID\tNAME\tMIP\tSIP\tVERSION\tTYPE", func(w io.Writer) {
		for _, n := range nodes {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", n.NodeID, n.Name, n.MIP, n.SIP, orDash(n.SoftwareVersion), orDash(n.PlatformInfo.NodeType))
		}
	})
}

func runClusterDrives(ctx context.Context, s *session, args []string) error {
	drives, err := s.api.Cluster.ListDrives(ctx)
	if err != nil {
		return err
	}
	return s.render(drives, "ID\tNODE\tSLOT\tCAPACITY\tSTATUS\tTYPE", func(w io.Writer) {
		for _, d := range drives {
			_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\n", d.DriveID, d.NodeID, d.Slot, d.Capacity, d.Status, orDash(d.Type))
		}
	})
}
