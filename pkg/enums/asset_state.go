package enums

// AssetCacheState tracks the lifecycle of one shell cache version.
type AssetCacheState string

const (
	AssetStateIdle       AssetCacheState = "idle"
	AssetStateInstalling AssetCacheState = "installing"
	AssetStateInstalled  AssetCacheState = "installed"
	AssetStateActivating AssetCacheState = "activating"
	AssetStateActive     AssetCacheState = "active"
	AssetStateRedundant  AssetCacheState = "redundant"
)

func (s AssetCacheState) String() string {
	return string(s)
}
