package services

// Notifier đẩy sự kiện realtime tới client (ws.Hub cài đặt interface này).
type Notifier interface {
	NotifyUser(subject string, event interface{})
	Broadcast(event interface{})
}

type nopNotifier struct{}

func (nopNotifier) NotifyUser(string, interface{}) {}
func (nopNotifier) Broadcast(interface{})          {}

type PodcastListChanged struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	PodcastID string `json:"podcast_id"`
}

func podcastListChanged(action, podcastID string) PodcastListChanged {
	return PodcastListChanged{Type: "podcast_list_changed", Action: action, PodcastID: podcastID}
}
