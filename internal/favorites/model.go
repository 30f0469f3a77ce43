// Package favorites keeps each user's crate of saved albums. The crate is
// owned by this application, not by the streaming provider.
package favorites

import "time"

type Favorite struct {
	UserID   string    `json:"-"`
	AlbumID  string    `json:"albumId"`
	Name     string    `json:"name"`
	Artist   string    `json:"artist"`
	CoverURL string    `json:"coverUrl"`
	AddedAt  time.Time `json:"addedAt"`
}
