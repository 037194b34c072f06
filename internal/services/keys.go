package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func itemPrefix(ownerSlug string, itemID uuid.UUID) string {
	return fmt.Sprintf("owners/%s/training/%s", ownerSlug, itemID)
}

func audioKey(ownerSlug string, itemID uuid.UUID) string {
	return itemPrefix(ownerSlug, itemID) + "/audio.mp3"
}

func promptKey(ownerSlug string, itemID uuid.UUID) string {
	return itemPrefix(ownerSlug, itemID) + "/prompt.txt"
}

func datasetPrefix(ownerSlug string) string {
	return fmt.Sprintf("owners/%s/datasets/", ownerSlug)
}

// archiveKey stamps the key with the UTC time in ISO-8601 millisecond form,
// with ':' and '.' replaced so the key is filesystem safe.
func archiveKey(ownerSlug string, at time.Time) string {
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return datasetPrefix(ownerSlug) + "dataset-" + stamp + ".zip"
}

func baseName(seq int) string {
	return fmt.Sprintf("track-%04d", seq)
}
