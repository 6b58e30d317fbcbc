package domain

// VolumeAccessGroup maps initiators to the volumes they may reach.
type VolumeAccessGroup struct {
	VolumeAccessGroupID int64          `json:"volumeAccessGroupID"`
	Name                string         `json:"name"`
	Initiators          []string       `json:"initiators"`
	Volumes             []int64        `json:"volumes"`
	DeletedVolumes      []int64        `json:"deletedVolumes"`
	Attributes          map[string]any `json:"attributes,omitempty"`
}
