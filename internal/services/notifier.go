package services

import (
	"sync"

	"github.com/MarcoCortez091118/ShowYoManny-sub000/internal/models"
)

// PlaylistNotifier fans freshly generated playlists out to subscribed
// display controllers. Sends never block: each subscriber holds at most the
// latest playlist, older undelivered ones are replaced.
type PlaylistNotifier struct {
	mu   sync.Mutex
	subs map[int]chan *models.Playlist
}

func NewPlaylistNotifier() *PlaylistNotifier {
	return &PlaylistNotifier{subs: make(map[int]chan *models.Playlist)}
}

func (n *PlaylistNotifier) Subscribe(displayID int) <-chan *models.Playlist {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan *models.Playlist, 1)
	n.subs[displayID] = ch
	return ch
}

func (n *PlaylistNotifier) Unsubscribe(displayID int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subs[displayID]; ok {
		close(ch)
		delete(n.subs, displayID)
	}
}

func (n *PlaylistNotifier) Publish(playlist *models.Playlist) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- playlist:
		default:
			// Replace the stale undelivered playlist with the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- playlist:
			default:
			}
		}
	}
}
