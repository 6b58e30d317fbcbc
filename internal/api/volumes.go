package api

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

// Volumes manages block volumes.
type Volumes struct {
	caller    Caller
	snapshots *Snapshots
}

// CreateVolumeRequest describes a new volume. TotalSize is in bytes.
type CreateVolumeRequest struct {
	Name       string
	AccountID  int64
	TotalSize  int64
	Enable512e bool
	QoS        *domain.QoS
	Attributes map[string]any
}

// CloneVolumeRequest describes a clone of an existing volume or snapshot.
type CloneVolumeRequest struct {
	VolumeID     int64
	Name         string
	NewAccountID int64
	NewSize      int64
	Access       domain.VolumeAccess
	SnapshotID   int64
	Attributes   map[string]any
}

// CloneResult identifies the clone job and the new volume.
type CloneResult struct {
	CloneID     int64 `json:"cloneID"`
	VolumeID    int64 `json:"volumeID"`
	AsyncHandle int64 `json:"asyncHandle"`
}

// ModifyVolumeRequest changes an existing volume. Zero fields are left as is.
type ModifyVolumeRequest struct {
	VolumeID   int64
	AccountID  int64
	Access     domain.VolumeAccess
	TotalSize  int64
	QoS        *domain.QoS
	Attributes map[string]any
}

// ListActive returns active volumes sorted by ID. A zero limit means no limit.
func (v *Volumes) ListActive(ctx context.Context, startID, limit int64) ([]domain.Volume, error) {
	params := map[string]any{}
	setIf(params, "startVolumeID", startID)
	setIf(params, "limit", limit)
	return v.list(ctx, "ListActiveVolumes", params)
}

// ListDeleted returns volumes that are deleted but not yet purged.
func (v *Volumes) ListDeleted(ctx context.Context) ([]domain.Volume, error) {
	return v.list(ctx, "ListDeletedVolumes", nil)
}

// ListForAccount returns the volumes owned by accountID.
func (v *Volumes) ListForAccount(ctx context.Context, accountID int64) ([]domain.Volume, error) {
	vols, err := v.list(ctx, "ListVolumesForAccount", map[string]any{"accountID": accountID})
	if err != nil {
		return nil, notFound(err, nameUnknownAccount, fmt.Sprintf("account %d", accountID))
	}
	return vols, nil
}

// ListWithSnapshots returns active volumes with SnapshotIDs filled in.
func (v *Volumes) ListWithSnapshots(ctx context.Context) ([]domain.Volume, error) {
	vols, err := v.ListActive(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	snaps, err := v.snapshots.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	byVolume := make(map[int64][]int64, len(vols))
	for _, s := range snaps {
		byVolume[s.VolumeID] = append(byVolume[s.VolumeID], s.SnapshotID)
	}
	for i := range vols {
		vols[i].SnapshotIDs = byVolume[vols[i].VolumeID]
	}
	return vols, nil
}

// Get returns one active volume by ID.
func (v *Volumes) Get(ctx context.Context, id int64) (*domain.Volume, error) {
	vols, err := v.ListActive(ctx, id, 1)
	if err != nil {
		return nil, err
	}
	for i := range vols {
		if vols[i].VolumeID == id {
			return &vols[i], nil
		}
	}
	return nil, fmt.Errorf("volume %d: %w", id, ErrNotFound)
}

// Create creates a volume and returns it as stored by the cluster.
func (v *Volumes) Create(ctx context.Context, req CreateVolumeRequest) (*domain.Volume, error) {
	if req.Name == "" || req.AccountID == 0 || req.TotalSize <= 0 {
		return nil, fmt.Errorf("create volume: name, account ID and a positive size are required")
	}
	params := map[string]any{
		"name":       req.Name,
		"accountID":  req.AccountID,
		"totalSize":  req.TotalSize,
		"enable512e": req.Enable512e,
	}
	if req.QoS != nil {
		params["qos"] = req.QoS
	}
	if len(req.Attributes) > 0 {
		params["attributes"] = req.Attributes
	}

	var created struct {
		VolumeID int64 `json:"volumeID"`
	}
	if err := v.caller.CallInto(ctx, "CreateVolume", params, &created, rpc.NonIdempotent()); err != nil {
		return nil, err
	}
	return v.Get(ctx, created.VolumeID)
}

// Clone starts an asynchronous clone.
func (v *Volumes) Clone(ctx context.Context, req CloneVolumeRequest) (*CloneResult, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("clone volume: name is required")
	}
	params := map[string]any{
		"volumeID": req.VolumeID,
		"name":     req.Name,
	}
	setIf(params, "newAccountID", req.NewAccountID)
	setIf(params, "newSize", req.NewSize)
	setIf(params, "access", req.Access)
	setIf(params, "snapshotID", req.SnapshotID)
	if len(req.Attributes) > 0 {
		params["attributes"] = req.Attributes
	}

	var out CloneResult
	if err := v.caller.CallInto(ctx, "CloneVolume", params, &out, rpc.NonIdempotent()); err != nil {
		return nil, notFound(err, nameVolumeDoesNotExist, fmt.Sprintf("volume %d", req.VolumeID))
	}
	return &out, nil
}

// Modify updates a volume.
func (v *Volumes) Modify(ctx context.Context, req ModifyVolumeRequest) error {
	params := map[string]any{"volumeID": req.VolumeID}
	setIf(params, "accountID", req.AccountID)
	setIf(params, "access", req.Access)
	setIf(params, "totalSize", req.TotalSize)
	if req.QoS != nil {
		params["qos"] = req.QoS
	}
	if req.Attributes != nil {
		params["attributes"] = req.Attributes
	}
	_, err := v.caller.Call(ctx, "ModifyVolume", params)
	return notFound(err, nameVolumeDoesNotExist, fmt.Sprintf("volume %d", req.VolumeID))
}

// Delete moves a volume to the deleted list.
func (v *Volumes) Delete(ctx context.Context, id int64) error {
	return v.byID(ctx, "DeleteVolume", id)
}

// Purge permanently removes a deleted volume.
func (v *Volumes) Purge(ctx context.Context, id int64) error {
	return v.byID(ctx, "PurgeDeletedVolume", id)
}

// Restore brings a deleted volume back.
func (v *Volumes) Restore(ctx context.Context, id int64) error {
	return v.byID(ctx, "RestoreDeletedVolume", id)
}

func (v *Volumes) byID(ctx context.Context, method string, id int64) error {
	_, err := v.caller.Call(ctx, method, map[string]any{"volumeID": id})
	return notFound(err, nameVolumeDoesNotExist, fmt.Sprintf("volume %d", id))
}

func (v *Volumes) list(ctx context.Context, method string, params map[string]any) ([]domain.Volume, error) {
	vols, err := callList[domain.Volume](ctx, v.caller, method, params, "volumes")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(vols, func(x, y domain.Volume) int { return cmp.Compare(x.VolumeID, y.VolumeID) })
	return vols, nil
}
