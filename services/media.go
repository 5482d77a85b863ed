package services

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"dm-lab/errors"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// ValidateMediaRef checks an image or audio payload reference.
//
// Two forms are accepted: an http(s) URL pointing at the blob store, which
// is taken as-is (upload validation is the collaborator's job), and an
// inline data URI, whose decoded bytes must actually sniff as the claimed
// media kind. Declared content types lie; the magic bytes do not.
func ValidateMediaRef(ref string, kind MediaKind) error {
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return nil
	}
	if !strings.HasPrefix(ref, "data:") {
		return errors.ErrUnsupportedMedia
	}

	_, payload, found := strings.Cut(ref, ",")
	if !found {
		return errors.ErrUnsupportedMedia
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return errors.ErrUnsupportedMedia
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), string(kind)+"/") {
		return errors.ErrUnsupportedMedia
	}
	return nil
}
