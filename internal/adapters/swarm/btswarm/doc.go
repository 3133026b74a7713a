// Package btswarm joins the BitTorrent swarm through anacrolix/torrent
//
// Each Join adds the magnet to a shared client and watches for the info
// dictionary. Torrents are reference counted per info hash: concurrent
// resolutions of the same magnet share one torrent, and the torrent is dropped
// only when the last session holding it is destroyed.
package btswarm
