package adpatchregexp

func IsAdMobAppID(id string) bool {
	return AdMobAppID.MatchString(id)
}

func IsSKAdNetworkIdentifier(id string) bool {
	return SKAdNetworkIdentifier.MatchString(id)
}

func IsFacebookAppID(id string) bool {
	return FacebookAppID.MatchString(id)
}
