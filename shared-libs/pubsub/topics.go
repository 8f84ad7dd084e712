package pubsub

// Topic names used across Skill Up services.
const (
	TopicUserEvents       = "user.events"
	TopicWorkshopEvents   = "workshop.events"
	TopicReflectionEvents = "reflection.events"
)
