// Package profiles exposes public user profiles and the follow graph between users.
package profiles

// Profile is a user's public profile as seen by the viewer.
type Profile struct {
	Username    string  `json:"username" example:"alice"`
	Bio         *string `json:"bio" example:"I write about Go"`
	IsFollowing bool    `json:"isFollowing" example:"false"`
}

// ProfileResponse wraps a profile: {"profile": {...}}.
type ProfileResponse struct {
	Profile Profile `json:"profile"`
}
