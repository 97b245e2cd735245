package store

import (
	"crypto/sha256"
	"fmt"

	"github.com/repplus/paramscope/internal/snapshot"
)

// Fingerprint returns a stable hash of a snapshot's content. The timestamp
// is left out so rescanning an unchanged page yields the same value.
func Fingerprint(doc *snapshot.Document) string {
	if doc == nil {
		return ""
	}
	cp := *doc
	cp.Timestamp = ""
	data, err := snapshot.Encode(&cp)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

func (s *Store) findFingerprint(fp string) *Scan {
	if fp == "" {
		return nil
	}
	for i := range s.Scans {
		if s.Scans[i].Fingerprint == fp {
			return &s.Scans[i]
		}
	}
	return nil
}
