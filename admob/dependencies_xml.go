package admob

import (
	"encoding/xml"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchio"
	xslice "github.com/frantjc/x/slice"
)

const (
	DependenciesName = "GoogleAdMobDependencies.xml"
	// IOSAdapterPod is the pod that must be declared for the
	// AdMob iOS app ID to be meaningful.
	IOSAdapterPod = "APDGoogleAdMobAdapter"
)

// Dependencies is an ad network's dependencies XML, e.g.
//
//	<dependencies>
//	  <androidPackages>
//	    <androidPackage spec="com.appodeal.ads.sdk.networks:admob:22.3.0.0" />
//	  </androidPackages>
//	  <iosPods>
//	    <iosPod name="APDGoogleAdMobAdapter" version="3.2.0.0" />
//	  </iosPods>
//	</dependencies>
type Dependencies struct {
	XMLName         xml.Name                     `xml:"dependencies"`
	AndroidPackages []DependenciesAndroidPackage `xml:"androidPackages>androidPackage"`
	IOSPods         []DependenciesIOSPod         `xml:"iosPods>iosPod"`
}

type DependenciesAndroidPackage struct {
	Spec string `xml:"spec,attr"`
}

type DependenciesIOSPod struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr"`
}

// OpenDependencies reads the dependencies XML at name.
func OpenDependencies(name string) (*Dependencies, error) {
	b, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return nil, &adpatch.NotFoundError{Path: name}
	} else if err != nil {
		return nil, err
	}

	deps := &Dependencies{}
	if err := xml.Unmarshal(b, deps); err != nil {
		return nil, &adpatch.ParseError{Path: name, Err: err}
	}

	return deps, nil
}

// HasIOSPod reports whether a pod named name is declared.
func (d *Dependencies) HasIOSPod(name string) bool {
	return xslice.Some(d.IOSPods, func(pod DependenciesIOSPod, _ int) bool {
		return pod.Name == name
	})
}
