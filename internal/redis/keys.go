package redisx

import "fmt"

const ns = "plango:v1"

func KeyPlanDocument(planID string) string {
	return fmt.Sprintf("%s:plan:%s:document", ns, planID)
}

func KeyPlanList(locationID string) string {
	if locationID == "" {
		locationID = "all"
	}
	return fmt.Sprintf("%s:plans:list:%s", ns, locationID)
}

func KeyPlanStatus(planID, eventID string) string {
	return fmt.Sprintf("%s:plan:%s:status:%s", ns, planID, eventID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelPlansChanged() string {
	return ns + ":plans:changed"
}

func ChannelStatusChanged() string {
	return ns + ":status:changed"
}
