package domain

// ClusterInfo is the configuration summary returned by GetClusterInfo.
type ClusterInfo struct {
	Name          string         `json:"name"`
	UniqueID      string         `json:"uniqueID"`
	UUID          string         `json:"uuid"`
	MVIP          string         `json:"mvip"`
	SVIP          string         `json:"svip"`
	RepCount      int            `json:"repCount"`
	EncryptAtRest string         `json:"encryptionAtRestState"`
	Ensemble      []string       `json:"ensemble"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}

// ClusterVersionInfo reports software versions across the cluster.
type ClusterVersionInfo struct {
	ClusterAPIVersion string        `json:"clusterAPIVersion"`
	ClusterVersion    string        `json:"clusterVersion"`
	Nodes             []NodeVersion `json:"clusterVersionInfo"`
}

// NodeVersion is one node's entry in ClusterVersionInfo.
type NodeVersion struct {
	NodeID               int64  `json:"nodeID"`
	NodeVersion          string `json:"nodeVersion"`
	NodeInternalRevision string `json:"nodeInternalRevision"`
}

// ClusterCapacity holds space and performance totals.
type ClusterCapacity struct {
	ActiveBlockSpace    int64  `json:"activeBlockSpace"`
	ActiveSessions      int64  `json:"activeSessions"`
	MaxProvisionedSpace int64  `json:"maxProvisionedSpace"`
	MaxUsedSpace        int64  `json:"maxUsedSpace"`
	ProvisionedSpace    int64  `json:"provisionedSpace"`
	UsedSpace           int64  `json:"usedSpace"`
	CurrentIOPS         int64  `json:"currentIOPS"`
	MaxIOPS             int64  `json:"maxIOPS"`
	Timestamp           string `json:"timestamp"`
}

// Node is an active storage node.
type Node struct {
	NodeID          int64        `json:"nodeID"`
	Name            string       `json:"name"`
	MIP             string       `json:"mip"`
	SIP             string       `json:"sip"`
	CIP             string       `json:"cip"`
	SoftwareVersion string       `json:"softwareVersion"`
	PlatformInfo    PlatformInfo `json:"platformInfo"`
}

// PlatformInfo describes node hardware.
type PlatformInfo struct {
	NodeType    string `json:"nodeType"`
	ChassisType string `json:"chassisType"`
}

// Drive is a physical drive attached to a node.
type Drive struct {
	DriveID  int64  `json:"driveID"`
	NodeID   int64  `json:"nodeID"`
	Slot     int    `json:"slot"`
	Capacity int64  `json:"capacity"`
	Serial   string `json:"serial"`
	Status   string `json:"status"`
	Type     string `json:"type"`
}
