package models

// PhoneLookupResult is a single item produced by the phone lookup provider.
// Results keep the input order of the uploaded CSV; duplicates are allowed.
type PhoneLookupResult struct {
	PhoneNumber  string `json:"phoneNumber"`
	IsRegistered bool   `json:"isRegistered"`
	UserID       int64  `json:"userId,omitempty"`
}

// InviteSummary is the outcome partition of one bulk-invite run.
// Both slices preserve the input order of the processed IDs.
type InviteSummary struct {
	Added  []int64
	Failed []int64
}

// SessionRecord holds the last lookup results for one admin, bridging the
// CSV upload step and the later add-to-channel step.
type SessionRecord struct {
	Results []PhoneLookupResult `json:"results"`
}

// Settings is the persisted bot configuration.
type Settings struct {
	TelegramAPIID         int    `json:"telegram_api_id"`
	TelegramAPIHash       string `json:"telegram_api_hash"`
	TelegramStringSession string `json:"telegram_string_session"`
	TargetChannelUsername string `json:"target_channel_username"`
	ApifyAPIToken         string `json:"apify_api_token"`
}

// InviteReady reports whether all settings needed to run the inviter are present.
func (s Settings) InviteReady() bool {
	return s.TelegramAPIID != 0 &&
		s.TelegramAPIHash != "" &&
		s.TelegramStringSession != "" &&
		s.TargetChannelUsername != ""
}
