package zigate

import "testing"

func TestNewEndpointInstantiatesModeledClusters(t *testing.T) {
	sd := SimpleDescriptorResponseMsg{
		Endpoint:       1,
		Profile:        0x0104,
		InClusterList:  []uint16{uint16(ClusterBasic), uint16(ClusterGeneralOnOff), 0x9999},
		OutClusterList: []uint16{uint16(ClusterGeneralOnOff)},
	}
	ep := NewEndpoint(sd)

	if ep.Cluster(ClusterBasic) == nil {
		t.Error("expected Basic cluster to be instantiated")
	}
	if ep.Cluster(ClusterGeneralOnOff) == nil {
		t.Error("expected OnOff cluster to be instantiated")
	}
	if ep.Cluster(ClusterID(0x9999)) != nil {
		t.Error("unmodeled cluster id should not produce a Cluster")
	}
}

func TestEndpointUpdateAttributeUnavailableCluster(t *testing.T) {
	ep := NewEndpoint(SimpleDescriptorResponseMsg{Endpoint: 1})
	err := ep.updateAttribute(ClusterGeneralOnOff, attrOnOffOnOff, 0x10, []byte{0x01})
	if err == nil {
		t.Fatal("expected error updating a cluster not present on the endpoint")
	}
}

func TestDeviceFindCluster(t *testing.T) {
	d := newDevice(0x1234, 0xAABB)
	d.Endpoints[1] = NewEndpoint(SimpleDescriptorResponseMsg{
		Endpoint:      1,
		InClusterList: []uint16{uint16(ClusterGeneralOnOff)},
	})

	epNum, cl, ok := d.FindCluster(ClusterGeneralOnOff)
	if !ok || epNum != 1 {
		t.Fatalf("FindCluster: ok=%v epNum=%d", ok, epNum)
	}
	if _, isOnOff := cl.(*OnOffCluster); !isOnOff {
		t.Errorf("expected *OnOffCluster, got %T", cl)
	}

	if _, _, ok := d.FindCluster(ClusterLightingColorControl); ok {
		t.Error("FindCluster should fail for a cluster no endpoint carries")
	}
}
