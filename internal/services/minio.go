package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"strings"
	"time"

	"orebi_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

// UploadImage envoie une image produit ou bannière dans le bucket et
// renvoie l'URL publique, c'est elle qui sert d'imageRef dans le panier.
func UploadImage(folder string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := folder + "/" + file.Filename

	_, err = database.MinIO.PutObject(context.Background(), bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	return PublicImageURL(objectName), nil
}

// PublicImageURL construit l'URL publique d'un objet du bucket images.
func PublicImageURL(objectName string) string {
	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), os.Getenv("MINIO_BUCKET"), objectName)
}

// GenerateSignedURL génère une URL de lecture signée avec expiration.
func GenerateSignedURL(ctx context.Context, objectPath string, duration time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")

	// Nettoie l'URL complète pour ne garder que le chemin relatif au bucket
	key := objectPath
	if idx := strings.Index(objectPath, "/"+bucket+"/"); idx >= 0 {
		key = objectPath[idx+len(bucket)+2:]
	}

	presignedURL, err := database.MinIO.PresignedGetObject(ctx, bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}

	return presignedURL.String(), nil
}
