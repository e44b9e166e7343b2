package linktracklets

import "testing"

// TestFindCandidateGroupsClustersCloseTracklets builds three tracklets
// sharing one tight cluster and a fourth well outside it, and checks the
// rdvv screen reports the cluster without the outlier.
func TestFindCandidateGroupsClustersCloseTracklets(t *testing.T) {
	d1 := Detection{ID: "d1", Epoch: 0.00, RA: degToRad(10.000), Dec: degToRad(20.000)}
	d2 := Detection{ID: "d2", Epoch: 0.02, RA: degToRad(10.001), Dec: degToRad(20.002)}
	seed, err := NewTracklet([]Detection{d1, d2})
	if err != nil {
		t.Fatalf("NewTracklet(d1,d2): %v", err)
	}
	vra, vdec := impliedVelocity(d1, d2)

	near1 := Detection{ID: "near1", Epoch: 0.05, RA: degToRad(10.0025), Dec: degToRad(20.005)}
	near2 := Detection{ID: "near2", Epoch: 0.06, RA: degToRad(10.003), Dec: degToRad(20.006)}
	far := Detection{ID: "far", Epoch: 0.05, RA: degToRad(200.0), Dec: degToRad(-40.0)}

	tracklets := TrackletArray{
		seed,
		singletonTracklet(near1, vra, vdec),
		singletonTracklet(near2, vra, vdec),
		singletonTracklet(far, 0, 0),
	}

	groups, _, err := FindCandidateGroups(tracklets, DefaultGroupParams())
	if err != nil {
		t.Fatalf("FindCandidateGroups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want exactly 1 cluster; %+v", len(groups), groups)
	}
	for _, idx := range groups[0].Indices {
		if idx == 3 {
			t.Errorf("far tracklet (index 3) was included in the cluster: %+v", groups[0])
		}
	}
	if len(groups[0].Indices) != 3 {
		t.Errorf("cluster has %d members, want 3 (seed, near1, near2); %+v", len(groups[0].Indices), groups[0])
	}
}

func TestFindCandidateGroupsRejectsInvalidParams(t *testing.T) {
	p := DefaultGroupParams()
	p.MinGroup = 0
	if _, _, err := FindCandidateGroups(TrackletArray{}, p); err == nil {
		t.Fatal("expected an error for MinGroup=0, got nil")
	}
}
