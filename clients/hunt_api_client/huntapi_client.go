package hunt_api_client

import (
	"github.com/xeniahunt/huntclient/clients"
)

// HuntAPIClient is the player-facing surface of the hunt backend. Every
// request carries the session bearer token supplied by the token source.
type HuntAPIClient struct {
	*clients.BaseClient
}

func NewHuntAPIClient(baseURL string, tokens clients.TokenSource) *HuntAPIClient {
	return &HuntAPIClient{
		BaseClient: clients.NewBaseClient(baseURL, tokens),
	}
}
