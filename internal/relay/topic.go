package relay

import "strings"

// topicPrefix namespaces hub traffic on the shared bus. The channel to
// topic mapping is bijective and pure: every channel has exactly one topic.
const topicPrefix = "broadcast:"

// wildcardPattern matches every relay topic.
const wildcardPattern = topicPrefix + "*"

// Topic derives the bus topic for a channel.
func Topic(channel string) string {
	return topicPrefix + channel
}

// ChannelFromTopic inverts Topic. It reports false for topics outside
// the relay namespace.
func ChannelFromTopic(topic string) (string, bool) {
	channel, ok := strings.CutPrefix(topic, topicPrefix)
	if !ok || channel == "" {
		return "", false
	}
	return channel, true
}
