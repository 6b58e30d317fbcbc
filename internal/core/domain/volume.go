package domain

// VolumeAccess is the access mode of a volume.
type VolumeAccess string

const (
	VolumeAccessReadWrite         VolumeAccess = "readWrite"
	VolumeAccessReadOnly          VolumeAccess = "readOnly"
	VolumeAccessLocked            VolumeAccess = "locked"
	VolumeAccessReplicationTarget VolumeAccess = "replicationTarget"
)

// GiB is the number of bytes the cluster uses for one gigabyte of volume size.
const GiB int64 = 1_000_000_000

// QoS holds quality of service settings for a volume.
type QoS struct {
	MinIOPS   int64 `json:"minIOPS,omitempty"`
	MaxIOPS   int64 `json:"maxIOPS,omitempty"`
	BurstIOPS int64 `json:"burstIOPS,omitempty"`
	BurstTime int64 `json:"burstTime,omitempty"`
}

// Volume is a block volume.
type Volume struct {
	VolumeID           int64          `json:"volumeID"`
	Name               string         `json:"name"`
	AccountID          int64          `json:"accountID"`
	Status             string         `json:"status"`
	Access             VolumeAccess   `json:"access"`
	TotalSize          int64          `json:"totalSize"`
	Enable512e         bool           `json:"enable512e"`
	IQN                string         `json:"iqn"`
	ScsiEUIDeviceID    string         `json:"scsiEUIDeviceID"`
	ScsiNAADeviceID    string         `json:"scsiNAADeviceID"`
	QoS                QoS            `json:"qos"`
	VolumeAccessGroups []int64        `json:"volumeAccessGroups"`
	CreateTime         string         `json:"createTime"`
	DeleteTime         string         `json:"deleteTime"`
	PurgeTime          string         `json:"purgeTime"`
	Attributes         map[string]any `json:"attributes,omitempty"`

	// SnapshotIDs is filled client-side from ListSnapshots.
	SnapshotIDs []int64 `json:"snapshots,omitempty"`
}

// SizeGiB returns the volume size in GiB.
func (v Volume) SizeGiB() float64 {
	return float64(v.TotalSize) / float64(GiB)
}
