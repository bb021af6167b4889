package events

const (
	TopicGroup     = "vlanhal:events:group"
	TopicInterface = "vlanhal:events:interface"
	TopicDrift     = "vlanhal:events:drift"
)
