package warpcast

// userResponse is the envelope of /v2/user?fid=<FID>.
type userResponse struct {
	Result struct {
		User *user `json:"user"`
	} `json:"result"`
}

type user struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	FollowerCount  int64  `json:"followerCount"`
	FollowingCount int64  `json:"followingCount"`
	Profile        struct {
		Bio struct {
			Text string `json:"text"`
		} `json:"bio"`
	} `json:"profile"`
	Extras *extras `json:"extras"`
}

type extras struct {
	// PublicSpamLabel looks like "2 (unlikely to engage in spammy
	// behavior)"; the leading digit is the label.
	PublicSpamLabel string   `json:"publicSpamLabel"`
	EthWallets      []string `json:"ethWallets"`
}
