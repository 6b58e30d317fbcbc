package api

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

const defaultNodePoll = 3 * time.Second

// Cluster reads cluster-wide state and bootstraps new clusters.
type Cluster struct {
	caller Caller
}

// CreateClusterRequest describes a cluster to form from pending nodes.
type CreateClusterRequest struct {
	MVIP       string
	SVIP       string
	RepCount   int
	Username   string
	Password   string
	Nodes      []string
	Attributes map[string]any
}

// Info returns cluster identity and addressing.
func (c *Cluster) Info(ctx context.Context) (*domain.ClusterInfo, error) {
	return callObject[domain.ClusterInfo](ctx, c.caller, "GetClusterInfo", nil, "clusterInfo")
}

// VersionInfo returns the cluster and per-node software versions.
func (c *Cluster) VersionInfo(ctx context.Context) (*domain.ClusterVersionInfo, error) {
	var out domain.ClusterVersionInfo
	if err := c.caller.CallInto(ctx, "GetClusterVersionInfo", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Capacity returns space and IOPS usage.
func (c *Cluster) Capacity(ctx context.Context) (*domain.ClusterCapacity, error) {
	return callObject[domain.ClusterCapacity](ctx, c.caller, "GetClusterCapacity", nil, "clusterCapacity")
}

// ListActiveNodes returns nodes that are part of the cluster, sorted by ID.
func (c *Cluster) ListActiveNodes(ctx context.Context) ([]domain.Node, error) {
	nodes, err := callList[domain.Node](ctx, c.caller, "ListActiveNodes", nil, "nodes")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(nodes, func(x, y domain.Node) int { return cmp.Compare(x.NodeID, y.NodeID) })
	return nodes, nil
}

// ListDrives returns all drives sorted by ID.
func (c *Cluster) ListDrives(ctx context.Context) ([]domain.Drive, error) {
	drives, err := callList[domain.Drive](ctx, c.caller, "ListDrives", nil, "drives")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(drives, func(x, y domain.Drive) int { return cmp.Compare(x.DriveID, y.DriveID) })
	return drives, nil
}

// Create forms a cluster. The request goes to node, a pending node's
// management address, since no cluster endpoint exists yet.
func (c *Cluster) Create(ctx context.Context, node domain.Endpoint, req CreateClusterRequest) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("create cluster: %w", err)
	}
	params := map[string]any{
		"mvip":     req.MVIP,
		"svip":     req.SVIP,
		"username": req.Username,
		"password": req.Password,
		"nodes":    req.Nodes,
	}
	setIf(params, "repCount", req.RepCount)
	if len(req.Attributes) > 0 {
		params["attributes"] = req.Attributes
	}

	_, err := c.caller.Call(ctx, "CreateCluster", params, rpc.WithEndpoint(node), rpc.NonIdempotent())
	return err
}

// WaitForNodes polls ListActiveNodes until at least n nodes are active.
// Bound the wait with a context deadline.
func (c *Cluster) WaitForNodes(ctx context.Context, n int, poll time.Duration) ([]domain.Node, error) {
	if poll <= 0 {
		poll = defaultNodePoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		nodes, err := c.ListActiveNodes(ctx)
		if err != nil {
			return nil, err
		}
		if len(nodes) >= n {
			return nodes, nil
		}

		select {
		case <-ctx.Done():
			return nodes, fmt.Errorf("waiting for %d active nodes, have %d: %w", n, len(nodes), ctx.Err())
		case <-ticker.C:
		}
	}
}
