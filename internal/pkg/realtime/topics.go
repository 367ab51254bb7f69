package realtime

// Topic names. The bare form is the admin-wide feed, the ":<userID>" form is
// scoped to one employee.
const (
	TopicAttendance    = "attendance"
	TopicLeaves        = "leaves"
	TopicSalaries      = "salaries"
	TopicNotifications = "notifications"
)

func UserTopic(topic, userID string) string {
	return topic + ":" + userID
}

// Topics returns the admin-wide topic plus the employee-scoped one.
func Topics(topic, userID string) []string {
	return []string{topic, UserTopic(topic, userID)}
}
