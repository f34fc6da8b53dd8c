package zigate

import "fmt"

// Endpoint is one simple descriptor's worth of state for a device:
// the profile/device identity plus the clusters discovered on it.
type Endpoint struct {
	Endpoint       uint8
	Profile        uint16
	DeviceID       uint16
	InClusterList  []uint16
	OutClusterList []uint16

	// clusters holds the modeled state for clusters this driver tracks
	// attribute data for. Clusters present in InClusterList but not
	// modeled (NewCluster returned nil) are absent here.
	clusters map[ClusterID]Cluster
}

// NewEndpoint builds the Endpoint state for a SimpleDescriptorResponse,
// instantiating modeled clusters for every entry in its in-cluster list.
func NewEndpoint(sd SimpleDescriptorResponseMsg) *Endpoint {
	ep := &Endpoint{
		Endpoint:       sd.Endpoint,
		Profile:        sd.Profile,
		DeviceID:       sd.DeviceID,
		InClusterList:  sd.InClusterList,
		OutClusterList: sd.OutClusterList,
		clusters:       make(map[ClusterID]Cluster),
	}
	for _, id := range sd.InClusterList {
		if c := NewCluster(ClusterID(id)); c != nil {
			ep.clusters[ClusterID(id)] = c
		}
	}
	return ep
}

// Cluster returns the modeled cluster state for id, or nil if the
// endpoint doesn't carry that cluster.
func (e *Endpoint) Cluster(id ClusterID) Cluster {
	return e.clusters[id]
}

func (e *Endpoint) updateAttribute(clusterID ClusterID, attrID uint16, attrType uint8, data []byte) error {
	c, ok := e.clusters[clusterID]
	if !ok {
		return fmt.Errorf("%w: cluster 0x%04X on endpoint %d", ErrNotAvailable, clusterID, e.Endpoint)
	}
	return c.update(attrID, attrType, data)
}

// Device is a single node of the ZigBee network as tracked by the
// coordinator: its addressing, announce metadata, and discovered
// endpoints.
type Device struct {
	ShortAddr     uint16
	IEEEAddr      uint64
	MACCapability uint8
	PowerSource   bool // mains-powered, from DevicesList
	LinkQuality   uint8

	// Endpoints is keyed by endpoint number. Populated incrementally as
	// ActiveEndpoints and SimpleDescriptorResponse frames arrive.
	Endpoints map[uint8]*Endpoint
}

func newDevice(shortAddr uint16, ieeeAddr uint64) *Device {
	return &Device{
		ShortAddr: shortAddr,
		IEEEAddr:  ieeeAddr,
		Endpoints: make(map[uint8]*Endpoint),
	}
}

// Endpoint looks up a discovered endpoint by number.
func (d *Device) Endpoint(num uint8) (*Endpoint, bool) {
	ep, ok := d.Endpoints[num]
	return ep, ok
}

// FindCluster scans every discovered endpoint for one carrying id,
// returning the first match. The zigbee adapter uses it to tell which
// clusters a device carries on any endpoint; its actuation and query
// calls still address a fixed endpoint number.
func (d *Device) FindCluster(id ClusterID) (epNum uint8, c Cluster, ok bool) {
	for n, ep := range d.Endpoints {
		if cl := ep.Cluster(id); cl != nil {
			return n, cl, true
		}
	}
	return 0, nil, false
}

func (d *Device) String() string {
	return fmt.Sprintf("Device{short: 0x%04X, ieee: 0x%016X, endpoints: %d}", d.ShortAddr, d.IEEEAddr, len(d.Endpoints))
}
