package events

type ChallengeCreated struct {
	ChallengeID string `json:"challenge_id"`
	CreatorID   string `json:"creator_id"`
	Title       string `json:"title"`
	MediaRef    string `json:"media_ref,omitempty"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
