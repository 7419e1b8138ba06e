package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"localMarketplace/internal/storage"
)

// checkImageURLs rejects links into our bucket that fall outside ownerPrefix.
// External links pass through. An empty ownerPrefix rejects every bucket link.
func checkImageURLs(store storage.Storage, ownerPrefix string, imageURLs ...string) error {
	for _, imageURL := range imageURLs {
		objectName, err := store.ObjectNameFromURL(imageURL)
		if err != nil {
			continue
		}

		if ownerPrefix == "" || !strings.HasPrefix(objectName, ownerPrefix) {
			return fmt.Errorf("%w: %s", ErrForeignImage, imageURL)
		}
	}

	return nil
}

// removeStoredImage deletes the object behind imageURL when it lives in our
// bucket under ownerPrefix. Failures are only logged.
func removeStoredImage(ctx context.Context, store storage.Storage, imageURL, ownerPrefix string) {
	objectName, err := store.ObjectNameFromURL(imageURL)
	if err != nil {
		return
	}

	if !strings.HasPrefix(objectName, ownerPrefix) {
		log.Printf("Предупреждение: объект %s вне каталога %s, не удаляем", objectName, ownerPrefix)
		return
	}

	if err := store.DeleteImage(ctx, objectName); err != nil {
		log.Printf("Предупреждение: не удалось удалить из MinIO: %v", err)
	}
}
