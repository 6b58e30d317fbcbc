package domain

// Snapshot is a point-in-time copy of a volume.
type Snapshot struct {
	SnapshotID      int64          `json:"snapshotID"`
	VolumeID        int64          `json:"volumeID"`
	Name            string         `json:"name"`
	Checksum        string         `json:"checksum"`
	Status          string         `json:"status"`
	TotalSize       int64          `json:"totalSize"`
	GroupID         int64          `json:"groupID"`
	CreateTime      string         `json:"createTime"`
	EnableRemoteRep bool           `json:"enableRemoteReplication"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

// GroupSnapshot is a consistent snapshot across several volumes.
type GroupSnapshot struct {
	GroupSnapshotID int64          `json:"groupSnapshotID"`
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	CreateTime      string         `json:"createTime"`
	Members         []Snapshot     `json:"members"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}
