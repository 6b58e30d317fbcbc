package api

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

// Snapshots manages volume and group snapshots.
type Snapshots struct {
	caller Caller
}

// CreateSnapshotRequest describes a new snapshot. A non-zero SnapshotID
// snapshots from that snapshot instead of the live volume.
type CreateSnapshotRequest struct {
	VolumeID   int64
	SnapshotID int64
	Name       string
	Attributes map[string]any
}

// List returns snapshots sorted by ID, for one volume or for all when volumeID is 0.
func (s *Snapshots) List(ctx context.Context, volumeID int64) ([]domain.Snapshot, error) {
	params := map[string]any{}
	setIf(params, "volumeID", volumeID)

	snaps, err := callList[domain.Snapshot](ctx, s.caller, "ListSnapshots", params, "snapshots")
	if err != nil {
		return nil, notFound(err, nameVolumeDoesNotExist, fmt.Sprintf("volume %d", volumeID))
	}
	slices.SortFunc(snaps, func(x, y domain.Snapshot) int { return cmp.Compare(x.SnapshotID, y.SnapshotID) })
	return snaps, nil
}

// Get returns one snapshot by ID.
func (s *Snapshots) Get(ctx context.Context, id int64) (*domain.Snapshot, error) {
	snaps, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range snaps {
		if snaps[i].SnapshotID == id {
			return &snaps[i], nil
		}
	}
	return nil, fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
}

// Create takes a snapshot and returns it as stored by the cluster.
func (s *Snapshots) Create(ctx context.Context, req CreateSnapshotRequest) (*domain.Snapshot, error) {
	params := map[string]any{"volumeID": req.VolumeID}
	setIf(params, "snapshotID", req.SnapshotID)
	setIf(params, "name", req.Name)
	if len(req.Attributes) > 0 {
		params["attributes"] = req.Attributes
	}

	var created struct {
		SnapshotID int64 `json:"snapshotID"`
	}
	if err := s.caller.CallInto(ctx, "CreateSnapshot", params, &created, rpc.NonIdempotent()); err != nil {
		return nil, notFound(err, nameVolumeDoesNotExist, fmt.Sprintf("volume %d", req.VolumeID))
	}
	snaps, err := s.List(ctx, req.VolumeID)
	if err != nil {
		return nil, err
	}
	for i := range snaps {
		if snaps[i].SnapshotID == created.SnapshotID {
			return &snaps[i], nil
		}
	}
	return nil, fmt.Errorf("snapshot %d: %w", created.SnapshotID, ErrNotFound)
}

// Delete removes a snapshot.
func (s *Snapshots) Delete(ctx context.Context, id int64) error {
	_, err := s.caller.Call(ctx, "DeleteSnapshot", map[string]any{"snapshotID": id})
	return err
}

// Rollback restores volumeID to snapshotID. With saveCurrentState the
// current contents are kept as a new snapshot first, so the call is not
// repeated after a transport failure.
func (s *Snapshots) Rollback(ctx context.Context, volumeID, snapshotID int64, saveCurrentState bool) error {
	var opts []rpc.CallOption
	if saveCurrentState {
		opts = append(opts, rpc.NonIdempotent())
	}
	_, err := s.caller.Call(ctx, "RollbackToSnapshot", map[string]any{
		"volumeID":         volumeID,
		"snapshotID":       snapshotID,
		"saveCurrentState": saveCurrentState,
	}, opts...)
	return err
}

// ListGroup returns group snapshots covering the given volumes.
func (s *Snapshots) ListGroup(ctx context.Context, volumeIDs []int64) ([]domain.GroupSnapshot, error) {
	params := map[string]any{}
	if len(volumeIDs) > 0 {
		params["volumes"] = volumeIDs
	}
	groups, err := callList[domain.GroupSnapshot](ctx, s.caller, "ListGroupSnapshots", params, "groupSnapshots")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(groups, func(x, y domain.GroupSnapshot) int {
		return cmp.Compare(x.GroupSnapshotID, y.GroupSnapshotID)
	})
	return groups, nil
}

// CreateGroup takes a consistent snapshot of several volumes and returns its ID.
func (s *Snapshots) CreateGroup(ctx context.Context, volumeIDs []int64, name string) (int64, error) {
	if len(volumeIDs) == 0 {
		return 0, fmt.Errorf("create group snapshot: at least one volume is required")
	}
	params := map[string]any{"volumes": volumeIDs}
	setIf(params, "name", name)

	var created struct {
		GroupSnapshotID int64 `json:"groupSnapshotID"`
	}
	if err := s.caller.CallInto(ctx, "CreateGroupSnapshot", params, &created, rpc.NonIdempotent()); err != nil {
		return 0, err
	}
	return created.GroupSnapshotID, nil
}

// DeleteGroup removes a group snapshot, optionally keeping member snapshots.
func (s *Snapshots) DeleteGroup(ctx context.Context, id int64, saveMembers bool) error {
	_, err := s.caller.Call(ctx, "DeleteGroupSnapshot", map[string]any{
		"groupSnapshotID": id,
		"saveMembers":     saveMembers,
	})
	return err
}
