package composition

import (
	"fmt"
	"strconv"
)

// StoreLocator is the store locator page descriptor.
type StoreLocator struct {
	BrandName    string            `json:"brand_name"`
	StoreIcons   map[string]string `json:"store_icons"`
	ClusterIcons map[string]string `json:"cluster_icons"`
}

const clusterLevels = 3

// NewStoreLocator returns the locator descriptor with icon URLs under assetBase.
func NewStoreLocator(assetBase string) *StoreLocator {
	sl := &StoreLocator{
		BrandName: BrandName,
		StoreIcons: map[string]string{
			"active":   assetBase + "/images/glo-marker-selected.png",
			"inactive": assetBase + "/images/glo-marker.png",
		},
		ClusterIcons: make(map[string]string, clusterLevels),
	}
	for i := 1; i <= clusterLevels; i++ {
		sl.ClusterIcons[strconv.Itoa(i)] = fmt.Sprintf("%s/svg/glo-map-cluster-%d.svg", assetBase, i)
	}
	return sl
}

// ClusterIconURL returns the icon for a cluster size index, or "" outside 1..3.
// Icons are keyed by the decimal index so the descriptor stays a JSON object.
func (s *StoreLocator) ClusterIconURL(index int) string {
	return s.ClusterIcons[strconv.Itoa(index)]
}
