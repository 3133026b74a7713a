package btswarm

import (
	"magnetinfo/internal/platform/config"

	"github.com/anacrolix/torrent"
)

// Config controls the underlying torrent client
type Config struct {
	DataDir     string
	ListenPort  int
	NoDHT       bool
	NoUpload    bool
	DisableIPv6 bool
	// Trackers are announced for every joined magnet in addition to its own
	Trackers []string
}

// FromConfig reads SWARM_* keys
func FromConfig(c config.Conf) Config {
	c = c.Prefix("SWARM_")
	return Config{
		DataDir:     c.MayString("DATA_DIR", defaultDataDir()),
		ListenPort:  c.MayInt("LISTEN_PORT", 0),
		NoDHT:       c.MayBool("NO_DHT", false),
		NoUpload:    c.MayBool("NO_UPLOAD", true),
		DisableIPv6: c.MayBool("DISABLE_IPV6", false),
		Trackers:    c.MayCSV("TRACKERS", nil),
	}
}

func (c Config) client() *torrent.ClientConfig {
	cc := torrent.NewDefaultClientConfig()
	cc.DataDir = c.DataDir
	cc.ListenPort = c.ListenPort
	cc.NoDHT = c.NoDHT
	cc.NoUpload = c.NoUpload
	cc.DisableIPv6 = c.DisableIPv6
	cc.Seed = false
	cc.NoDefaultPortForwarding = true
	return cc
}
