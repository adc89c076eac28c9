package neynar

// userResponse is the envelope of /farcaster/user/by_fid/<FID>.
type userResponse struct {
	User *user `json:"user"`
}

// bulkResponse is the envelope of /farcaster/user/bulk?fids=<FID>.
type bulkResponse struct {
	Users []user `json:"users"`
}

type user struct {
	FID               int64          `json:"fid"`
	Username          string         `json:"username"`
	DisplayName       string         `json:"display_name"`
	PfpURL            string         `json:"pfp_url"`
	FollowerCount     int64          `json:"follower_count"`
	FollowingCount    int64          `json:"following_count"`
	PowerBadge        bool           `json:"power_badge"`
	Score             *float64       `json:"score"` // 0-1 scale in newer API versions
	SpamLabel         *int           `json:"spam_label"`
	Profile           profile        `json:"profile"`
	Experimental      *experimental  `json:"experimental"`
	VerifiedAddresses *verifiedAddrs `json:"verified_addresses"`
}

type profile struct {
	Bio bio `json:"bio"`
}

type bio struct {
	Text string `json:"text"`
}

type experimental struct {
	NeynarUserScore *float64 `json:"neynar_user_score"`
}

type verifiedAddrs struct {
	EthAddresses []string `json:"eth_addresses"`
}
