// Package domain holds the types, ports and error taxonomy of magnet metadata resolution
package domain

import (
	"strings"
	"time"
)

// DefaultDeadline bounds a resolution when the caller does not choose one
const DefaultDeadline = 30 * time.Second

// File is one entry of a torrent's file list, in the order the swarm reported it
type File struct {
	Name      string `json:"name"   example:"sample.iso"`
	Path      string `json:"path"   example:"sample/sample.iso"`
	SizeBytes uint64 `json:"length" example:"3221225472"`
}

// Metadata is what the swarm reports once the metadata handshake completes
type Metadata struct {
	Name       string
	Key        string
	Locator    string
	TotalBytes uint64
	Peers      uint32
	Files      []File
}

// ResolvedMetadata is the success payload of a resolution
// FormattedSize is always derived from TotalSizeBytes, never set independently
type ResolvedMetadata struct {
	Name           string `json:"name"           example:"sample.iso"`
	SessionKey     string `json:"info_hash"      example:"abcdef0123456789abcdef0123456789abcdef01"`
	Locator        string `json:"magnet_uri"     example:"magnet:?xt=urn:btih:abcdef0123456789abcdef0123456789abcdef01"`
	TotalSizeBytes uint64 `json:"total_size"     example:"3221225472"`
	PeerCount      uint32 `json:"peers"          example:"12"`
	Files          []File `json:"files"`
	FormattedSize  string `json:"formatted_size" example:"3.00 GB"`
}

// ResolveInput is the request body accepted by the http boundary
type ResolveInput struct {
	MagnetLink string `json:"magnet_link"          validate:"required,notblank,max=8192" example:"magnet:?xt=urn:btih:abcdef0123456789abcdef0123456789abcdef01"`
	TimeoutMs  int    `json:"timeout_ms,omitempty" validate:"omitempty,min=1"             example:"30000"`
}

// JoinOptions are passed through to the swarm client on join
type JoinOptions struct {
	// Trackers are appended to any announced in the locator itself
	Trackers []string
}

// NormalizeIdentifier trims the locator and rejects blanks before any session exists
func NormalizeIdentifier(identifier string) (string, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return "", NewError(KindInvalidIdentifier, "missing magnet link", nil)
	}
	return id, nil
}
